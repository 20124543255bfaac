package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sizely/core/converter"
	"sizely/internal/deps"
	"sizely/internal/ui"
)

// doctorCmd 检查外部工具、主机和状态数据库
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the image backend and environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg := currentConfig()

		backend := cfg.Tools.Backend
		if tool, err := converter.NewImageTool(cfg, log.Named("tool")); err == nil {
			backend = tool.Name()
		} else {
			ui.Warning("configured backend unavailable: %v", err)
		}

		report := deps.Doctor(cfg.Tools.SipsPath, backend, log.Named("deps"))

		toolRows := make([][]string, 0, len(report.Tools))
		for _, t := range report.Tools {
			status := "found"
			if !t.Installed {
				status = "missing"
				if t.ErrorMessage != "" {
					status += ": " + t.ErrorMessage
				}
			}
			toolRows = append(toolRows, []string{t.Name, t.Path, status, strings.Join(t.Features, " ")})
		}
		if err := ui.PrintTable(out, []string{"Tool", "Path", "Status", "Writes"}, toolRows); err != nil {
			return err
		}

		rows := [][]string{
			{"backend", report.Backend},
			{"system", fmt.Sprintf("%s/%s %s", report.OS, report.Arch, report.Platform)},
			{"cpus", strconv.Itoa(report.CPUs)},
			{"memory", fmt.Sprintf("%d MB free of %d MB", report.FreeMemMB, report.TotalMemMB)},
		}

		a, err := openApp()
		if err != nil {
			log.Warn("打开状态数据库失败", zap.Error(err))
			rows = append(rows, []string{"state", "unavailable: " + err.Error()})
		} else {
			defer a.Close()
			rows = append(rows, []string{"state", a.state.Path()})
			if stats, err := a.state.GetStats(); err == nil {
				names := make([]string, 0, len(stats.Buckets))
				for name := range stats.Buckets {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					rows = append(rows, []string{"  " + name, strconv.Itoa(stats.Buckets[name])})
				}
				rows = append(rows, []string{"  size", fmt.Sprintf("%d KB", stats.Size/1024)})
			}
			if free, err := deps.FreeSpaceMB(filepath.Dir(a.state.Path())); err == nil {
				rows = append(rows, []string{"free space", fmt.Sprintf("%d MB", free)})
			}
		}

		if err := ui.PrintTable(out, []string{"Check", "Result"}, rows); err != nil {
			return err
		}
		for _, t := range report.Missing {
			ui.Error("required tool missing: %s", t.Name)
		}
		if len(report.Missing) > 0 {
			return fmt.Errorf("%d required tool(s) missing", len(report.Missing))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

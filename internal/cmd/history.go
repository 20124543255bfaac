package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sizely/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			runs, err := a.state.ListRuns()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				ui.Info("no runs recorded yet")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				status := "ok"
				switch {
				case r.Cancelled:
					status = "cancelled"
				case r.Errors > 0:
					status = strconv.Itoa(r.Errors) + " error(s)"
				}
				rows = append(rows, []string{
					shortID(r.ID),
					r.Started.Local().Format("2006-01-02 15:04"),
					r.Mode,
					r.Format,
					fmt.Sprintf("%d → %d", r.Inputs, r.Produced),
					status,
					r.Finished.Sub(r.Started).Round(time.Millisecond).String(),
				})
			}
			return ui.PrintTable(cmd.OutOrStdout(), []string{"Job", "Started", "Mode", "Format", "Files", "Status", "Took"}, rows)
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Print the log of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if r, err := a.state.GetRun(args[0]); err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), r.Log)
				return nil
			}
			runs, err := a.state.ListRuns()
			if err != nil {
				return err
			}
			// 支持列表中显示的短ID
			for _, r := range runs {
				if len(args[0]) >= 8 && strings.HasPrefix(r.ID, args[0]) {
					fmt.Fprintln(cmd.OutOrStdout(), r.Log)
					return nil
				}
			}
			return fmt.Errorf("run not found: %s", args[0])
		})
	},
}

func init() {
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

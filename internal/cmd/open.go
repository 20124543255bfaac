package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sizely/core/handoff"
	"sizely/core/converter"
)

// openCmd 处理文件管理器扩展通过 sizely:// 链接交接的文件
var openCmd = &cobra.Command{
	Use:    "open <url>",
	Short:  "Process files handed over by a sizely:// link",
	Args:   cobra.ExactArgs(1),
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return openHandoff(cmd, args[0])
	},
}

func openHandoff(cmd *cobra.Command, raw string) error {
	paths, ok := handoff.Decode(raw)
	if !ok {
		// 格式错误的链接直接忽略
		log.Debug("忽略无效的交接链接", zap.String("url", raw))
		return nil
	}
	log.Info("收到交接文件", zap.Int("count", len(paths)))
	return runWithSavedSettings(cmd, paths)
}

var handoffCmd = &cobra.Command{
	Use:   "handoff",
	Short: "Build sizely:// handoff links",
}

var handoffEncodeCmd = &cobra.Command{
	Use:   "encode <files...>",
	Short: "Print the sizely:// link that hands the given files to sizely",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := make([]string, 0, len(args))
		for _, arg := range args {
			normalized, err := converter.GlobalPathUtils.NormalizePath(arg)
			if err != nil {
				return err
			}
			paths = append(paths, normalized)
		}
		_, err := cmd.OutOrStdout().Write([]byte(handoff.Encode(paths) + "\n"))
		return err
	},
}

func init() {
	handoffCmd.AddCommand(handoffEncodeCmd)
	rootCmd.AddCommand(openCmd, handoffCmd)
}

// looksLikeHandoff 启动参数是单个交接链接
func looksLikeHandoff(args []string) bool {
	return len(args) == 1 && strings.HasPrefix(strings.ToLower(args[0]), handoff.Scheme+"://")
}

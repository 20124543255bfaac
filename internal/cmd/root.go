package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sizely/config"
	"sizely/core/input"
	"sizely/internal/logger"
	"sizely/internal/ui"
	"sizely/internal/version"
)

// LaunchMarker 启动参数中的文件标记
const LaunchMarker = "--files"

// 全局变量
var (
	cfgFile   string
	verbose   bool
	noColor   bool
	log       *zap.Logger
	backend   string
	cfgMgr    *config.ConfigManager
	renderCfg ui.RenderConfig

	// launchFiles 启动时通过 --files 传入的路径，只使用一次
	launchFiles []string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sizely",
	Short: "Batch resize and reformat images",
	Long: `sizely 批量缩放和转换图片格式。

模式:
  assets  以基准尺寸生成 1x/2x/3x 三个文件
  width   缩放到指定宽度
  box     缩放到宽高框内

启动时可用 --files a.png b.png 直接处理文件，使用上次保存的设置。`,
	Version:       version.GetVersionWithPrefix(),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	RunE:          runRootCommand,
}

// Execute 解析启动参数并执行命令
func Execute() error {
	paths, rest := input.ExtractMarked(os.Args[1:], LaunchMarker)
	launchFiles = paths
	rootCmd.SetArgs(rest)

	err := rootCmd.Execute()
	if log != nil {
		_ = log.Sync()
	}
	if err != nil {
		ui.Error("%v", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetVersionTemplate("sizely {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.sizely.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "image backend for this run: auto, sips, builtin (overrides tools.backend)")
}

// initConfig 初始化日志和配置
func initConfig() {
	bootstrap, err := logger.NewLogger(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfgMgr, err = config.NewConfigManager(cfgFile, bootstrap)
	if err != nil {
		bootstrap.Fatal("加载配置失败", zap.Error(err))
	}
	if backend != "" {
		if err := cfgMgr.UpdateConfig("tools.backend", backend); err != nil {
			bootstrap.Fatal("无效的后端", zap.String("backend", backend), zap.Error(err))
		}
	}
	cfg := cfgMgr.GetConfig()

	log, err = logger.NewLoggerWithConfig(&logger.LoggerConfig{
		Verbose:    verbose,
		EnableFile: cfg.Logging.EnableFile,
		LogLevel:   logger.ParseLevel(cfg.Logging.Level),
		LogDir:     cfg.Logging.LogDir,
		Component:  "sizely",
	})
	if err != nil {
		bootstrap.Fatal("创建日志器失败", zap.Error(err))
	}

	renderCfg = ui.DetectRenderConfig(noColor)
	renderCfg.Apply()

	cfgMgr.AddWatcher(reloadWatcher{})
	cfgMgr.EnableHotReload()

	log.Debug("sizely initialized", zap.String("version", version.GetVersion()))
}

// currentConfig 每次从管理器读取，热重载后立即生效
func currentConfig() *config.Config {
	return cfgMgr.GetConfig()
}

// reloadWatcher 记录热重载
type reloadWatcher struct{}

func (reloadWatcher) OnConfigChange(oldConfig, newConfig *config.Config) error {
	if log != nil {
		log.Info("配置已重新加载",
			zap.String("backend", newConfig.Tools.Backend),
			zap.Bool("backend_changed", oldConfig.Tools.Backend != newConfig.Tools.Backend))
	}
	return nil
}

// runRootCommand 有启动文件时直接处理，否则显示帮助
func runRootCommand(cmd *cobra.Command, args []string) error {
	if looksLikeHandoff(args) {
		return openHandoff(cmd, args[0])
	}
	if len(args) > 0 {
		return fmt.Errorf("unknown command %q", args[0])
	}
	if len(launchFiles) == 0 {
		return cmd.Help()
	}

	files := launchFiles
	launchFiles = nil
	return runWithSavedSettings(cmd, files)
}

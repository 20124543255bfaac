package converter

import (
	"fmt"
	"time"

	"sizely/config"

	"go.uber.org/zap"
)

// NewImageTool 按配置选择后端。auto 在找到 sips 时使用它，否则使用内置后端。
func NewImageTool(cfg *config.Config, logger *zap.Logger) (ImageTool, error) {
	timeout := time.Duration(cfg.Tools.TimeoutSeconds) * time.Second
	toolManager := NewToolManager(timeout, logger)

	switch cfg.Tools.Backend {
	case "sips":
		if !toolManager.IsToolAvailable(cfg.Tools.SipsPath) {
			return nil, fmt.Errorf("sips not found at %q", cfg.Tools.SipsPath)
		}
		return NewSipsTool(cfg.Tools.SipsPath, toolManager, logger), nil
	case "builtin":
		return NewBuiltinTool(logger), nil
	}

	if toolManager.IsToolAvailable(cfg.Tools.SipsPath) {
		logger.Debug("使用sips后端", zap.String("path", cfg.Tools.SipsPath))
		return NewSipsTool(cfg.Tools.SipsPath, toolManager, logger), nil
	}
	logger.Info("未找到sips，使用内置后端")
	return NewBuiltinTool(logger), nil
}

package cmd

import (
	"fmt"

	"sizely/core/preset"
	"sizely/core/state"

	"go.uber.org/zap"
)

// app 命令执行期间共享的持久化对象
type app struct {
	state   *state.Manager
	presets *preset.Book
}

// openApp 打开状态数据库并加载预设
func openApp() (*app, error) {
	cfg := currentConfig()
	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state path: %w", err)
	}

	manager, err := state.NewManager(dbPath, cfg.State.HistoryLimit, log.Named("state"))
	if err != nil {
		return nil, err
	}

	book, err := preset.NewBook(manager)
	if err != nil {
		manager.Close()
		return nil, err
	}

	log.Debug("状态数据库已打开", zap.String("path", dbPath))
	return &app{state: manager, presets: book}, nil
}

func (a *app) Close() {
	if err := a.state.Close(); err != nil {
		log.Warn("关闭状态数据库失败", zap.Error(err))
	}
}

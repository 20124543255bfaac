package converter

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ToolResult 外部工具执行结果
type ToolResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ToolManager 工具管理器
type ToolManager struct {
	logger     *zap.Logger
	timeout    time.Duration
	toolCache  map[string]bool
	cacheMutex sync.RWMutex
}

// NewToolManager 创建新的工具管理器
func NewToolManager(timeout time.Duration, logger *zap.Logger) *ToolManager {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ToolManager{
		logger:    logger,
		timeout:   timeout,
		toolCache: make(map[string]bool),
	}
}

// IsToolAvailable 检查工具是否可用
func (tm *ToolManager) IsToolAvailable(toolPath string) bool {
	tm.cacheMutex.RLock()
	if available, exists := tm.toolCache[toolPath]; exists {
		tm.cacheMutex.RUnlock()
		return available
	}
	tm.cacheMutex.RUnlock()

	// sips 没有 --version，只检查可执行文件是否存在
	_, err := exec.LookPath(toolPath)
	available := err == nil
	if err != nil {
		tm.logger.Debug("工具不可用", zap.String("tool", toolPath), zap.Error(err))
	}

	tm.cacheMutex.Lock()
	tm.toolCache[toolPath] = available
	tm.cacheMutex.Unlock()

	return available
}

// Execute 执行单个工具命令，捕获退出码、stdout和stderr。
// 每次调用使用独立的超时上下文，批处理取消不会中断正在运行的进程。
// 失败不重试。
func (tm *ToolManager) Execute(toolPath string, args ...string) (*ToolResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), tm.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, toolPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &ToolResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	operation := filepath.Base(toolPath)

	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.ExitCode = -1
		tm.logger.Warn("工具执行超时", zap.String("tool", toolPath), zap.Duration("timeout", tm.timeout))
		return result, NewToolError(operation, &ToolResult{Stderr: "timed out after " + tm.timeout.String()}, err)
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		// 无法启动进程
		result.ExitCode = -1
	}

	tm.logger.Debug("工具执行失败",
		zap.String("tool", toolPath),
		zap.Strings("args", args),
		zap.Int("exit_code", result.ExitCode),
		zap.String("stderr", result.Stderr))

	return result, NewToolError(operation, result, err)
}

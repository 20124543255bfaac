// Package deps 运行环境检查：外部工具、磁盘空间、主机信息
package deps

import (
	"fmt"
	"runtime"

	coredeps "sizely/core/deps"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// Report 环境检查结果
type Report struct {
	Tools      []*coredeps.ToolInfo
	Missing    []*coredeps.ToolInfo
	Backend    string
	OS         string
	Platform   string
	Arch       string
	CPUs       int
	TotalMemMB uint64
	FreeMemMB  uint64
}

// Doctor 收集工具和主机信息。主机信息读取失败时保留已收集的部分。
func Doctor(sipsPath, backend string, logger *zap.Logger) *Report {
	dm := coredeps.NewDependencyManager(sipsPath, logger)
	if err := dm.CheckDependencies(); err != nil {
		logger.Warn("依赖检查失败", zap.Error(err))
	}

	report := &Report{
		Tools:   dm.GetAllTools(),
		Missing: dm.GetMissingRequiredTools(),
		Backend: backend,
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		CPUs:    runtime.NumCPU(),
	}

	if info, err := host.Info(); err == nil {
		report.Platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
	} else {
		logger.Debug("读取主机信息失败", zap.Error(err))
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		report.TotalMemMB = vm.Total / 1024 / 1024
		report.FreeMemMB = vm.Available / 1024 / 1024
	} else {
		logger.Debug("读取内存信息失败", zap.Error(err))
	}
	return report
}

// FreeSpaceMB 路径所在磁盘的可用空间
func FreeSpaceMB(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read disk usage for %s: %w", path, err)
	}
	return usage.Free / 1024 / 1024, nil
}

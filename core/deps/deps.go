package deps

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"sizely/core/converter"

	"go.uber.org/zap"
)

// ToolInfo 工具信息
type ToolInfo struct {
	Name         string
	Path         string
	Required     bool
	Installed    bool
	ErrorMessage string
	// Features 工具可写入的输出格式
	Features []string
}

// DependencyManager 依赖管理器
type DependencyManager struct {
	tools       map[string]*ToolInfo
	toolManager *converter.ToolManager
	logger      *zap.Logger
}

// NewDependencyManager 创建依赖管理器。sips 不是必需的，缺失时使用内置后端。
func NewDependencyManager(sipsPath string, logger *zap.Logger) *DependencyManager {
	return &DependencyManager{
		tools: map[string]*ToolInfo{
			"sips": {
				Name:     "sips",
				Path:     sipsPath,
				Required: false,
			},
		},
		toolManager: converter.NewToolManager(10*time.Second, logger),
		logger:      logger,
	}
}

// CheckDependencies 检查所有依赖
func (dm *DependencyManager) CheckDependencies() error {
	for _, tool := range dm.tools {
		if err := dm.checkTool(tool); err != nil {
			tool.ErrorMessage = err.Error()
			tool.Installed = false
		} else {
			tool.Installed = true
		}
	}
	return nil
}

// checkTool 检查单个工具
func (dm *DependencyManager) checkTool(tool *ToolInfo) error {
	resolved, err := exec.LookPath(tool.Path)
	if err != nil {
		return fmt.Errorf("tool not found: %s", tool.Path)
	}
	tool.Path = resolved

	if tool.Name == "sips" {
		dm.checkSipsFormats(tool)
	}
	return nil
}

// checkSipsFormats 从 sips --formats 中读取可写格式
func (dm *DependencyManager) checkSipsFormats(tool *ToolInfo) {
	result, err := dm.toolManager.Execute(tool.Path, "--formats")
	if err != nil {
		dm.logger.Debug("读取sips格式列表失败", zap.Error(err))
		return
	}
	tool.Features = writableFormats(result.Stdout)
}

// writableFormats 解析 "<uti> <name> Writable" 行，保留本程序支持的格式
func writableFormats(output string) []string {
	seen := make(map[string]bool)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || !strings.EqualFold(fields[len(fields)-1], "writable") {
			continue
		}
		if f, ok := converter.LookupFormat(fields[1]); ok {
			seen[f.Name] = true
		}
	}

	formats := make([]string, 0, len(seen))
	for name := range seen {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

// GetAllTools 获取所有工具信息
func (dm *DependencyManager) GetAllTools() []*ToolInfo {
	tools := make([]*ToolInfo, 0, len(dm.tools))
	for _, tool := range dm.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}

// GetMissingRequiredTools 获取缺失的必需工具
func (dm *DependencyManager) GetMissingRequiredTools() []*ToolInfo {
	var missing []*ToolInfo
	for _, tool := range dm.tools {
		if tool.Required && !tool.Installed {
			missing = append(missing, tool)
		}
	}
	return missing
}

// IsAllRequiredInstalled 检查是否所有必需工具都已安装
func (dm *DependencyManager) IsAllRequiredInstalled() bool {
	return len(dm.GetMissingRequiredTools()) == 0
}

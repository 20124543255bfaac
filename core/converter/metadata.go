package converter

import (
	"go.uber.org/zap"
)

// strippedProperties 去除元数据时删除的属性，按顺序执行
var strippedProperties = []string{
	"make",
	"model",
	"software",
	"description",
	"copyright",
	"artist",
	"creation",
}

// MetadataStripper 输出文件的元数据清理
type MetadataStripper struct {
	tool   ImageTool
	logger *zap.Logger
}

// NewMetadataStripper 创建元数据清理器
func NewMetadataStripper(tool ImageTool, logger *zap.Logger) *MetadataStripper {
	return &MetadataStripper{tool: tool, logger: logger}
}

// Strip 删除相机、作者等属性和色彩配置。
// 单个属性删除失败只记录警告，返回成功删除的数量。
func (ms *MetadataStripper) Strip(path string) int {
	removed := 0
	for _, property := range strippedProperties {
		if err := ms.tool.DeleteProperty(path, property); err != nil {
			ms.logger.Warn("删除元数据属性失败",
				zap.String("file", path),
				zap.String("property", property),
				zap.Error(err))
			continue
		}
		removed++
	}

	if err := ms.tool.DeleteColorProfile(path); err != nil {
		ms.logger.Warn("删除色彩配置失败", zap.String("file", path), zap.Error(err))
	} else {
		removed++
	}
	return removed
}

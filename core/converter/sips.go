package converter

import (
	"regexp"
	"strconv"

	"go.uber.org/zap"
)

// ResizeKind 缩放操作种类
type ResizeKind int

const (
	// ResizeFitSquare 保持比例，使较长边等于Size
	ResizeFitSquare ResizeKind = iota
	// ResizeStretch 强制缩放到 Width x Height
	ResizeStretch
	// ResampleWidth 按宽度重采样，高度按比例
	ResampleWidth
	// ResampleHeight 按高度重采样，宽度按比例
	ResampleHeight
)

// ResizeOp 一次缩放操作
type ResizeOp struct {
	Kind   ResizeKind
	Size   int
	Width  int
	Height int
}

// ImageTool 图像工具后端
type ImageTool interface {
	Name() string
	// Dimensions 读取像素尺寸，失败时返回false
	Dimensions(path string) (Dimensions, bool)
	Resize(input, output string, op ResizeOp) error
	Convert(input, output string, format OutputFormat, quality int) error
	DeleteProperty(path, property string) error
	DeleteColorProfile(path string) error
}

var (
	pixelWidthRe  = regexp.MustCompile(`pixelWidth:\s*(\d+)`)
	pixelHeightRe = regexp.MustCompile(`pixelHeight:\s*(\d+)`)
)

// SipsTool 通过 sips 命令行实现 ImageTool
type SipsTool struct {
	path        string
	toolManager *ToolManager
	logger      *zap.Logger
}

// NewSipsTool 创建sips后端
func NewSipsTool(path string, toolManager *ToolManager, logger *zap.Logger) *SipsTool {
	return &SipsTool{path: path, toolManager: toolManager, logger: logger}
}

// Name 后端名称
func (s *SipsTool) Name() string {
	return "sips"
}

// Dimensions 使用 -g pixelWidth -g pixelHeight 读取尺寸
func (s *SipsTool) Dimensions(path string) (Dimensions, bool) {
	result, err := s.toolManager.Execute(s.path, probeArgs(path)...)
	if err != nil {
		s.logger.Debug("读取尺寸失败", zap.String("file", path), zap.Error(err))
		return Dimensions{}, false
	}
	return parseDimensions(result.Stdout)
}

// Resize 缩放到临时文件
func (s *SipsTool) Resize(input, output string, op ResizeOp) error {
	args := append(resizeArgs(op), input, "--out", output)
	_, err := s.toolManager.Execute(s.path, args...)
	return err
}

// Convert 设置输出格式和质量
func (s *SipsTool) Convert(input, output string, format OutputFormat, quality int) error {
	args := append(formatArgs(format, quality), input, "--out", output)
	_, err := s.toolManager.Execute(s.path, args...)
	return err
}

// DeleteProperty 删除单个元数据属性
func (s *SipsTool) DeleteProperty(path, property string) error {
	_, err := s.toolManager.Execute(s.path, "-d", property, path)
	return err
}

// DeleteColorProfile 删除色彩管理属性
func (s *SipsTool) DeleteColorProfile(path string) error {
	_, err := s.toolManager.Execute(s.path, "--deleteColorManagementProperties", path)
	return err
}

func probeArgs(path string) []string {
	return []string{"-g", "pixelWidth", "-g", "pixelHeight", path}
}

// resizeArgs 缩放参数模板
func resizeArgs(op ResizeOp) []string {
	switch op.Kind {
	case ResizeFitSquare:
		return []string{"-Z", strconv.Itoa(op.Size)}
	case ResizeStretch:
		// sips -z 先高后宽
		return []string{"-z", strconv.Itoa(op.Height), strconv.Itoa(op.Width)}
	case ResampleWidth:
		return []string{"--resampleWidth", strconv.Itoa(op.Width)}
	case ResampleHeight:
		return []string{"--resampleHeight", strconv.Itoa(op.Height)}
	}
	return nil
}

// formatArgs 格式参数模板，只对支持质量的格式附加 formatOptions
func formatArgs(format OutputFormat, quality int) []string {
	args := []string{"-s", "format", format.ToolID}
	if format.SupportsQuality {
		args = append(args, "-s", "formatOptions", strconv.Itoa(quality))
	}
	return args
}

// parseDimensions 解析 sips -g 输出
func parseDimensions(output string) (Dimensions, bool) {
	w := pixelWidthRe.FindStringSubmatch(output)
	h := pixelHeightRe.FindStringSubmatch(output)
	if w == nil || h == nil {
		return Dimensions{}, false
	}
	width, errW := strconv.Atoi(w[1])
	height, errH := strconv.Atoi(h[1])
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return Dimensions{}, false
	}
	return Dimensions{Width: width, Height: height}, true
}

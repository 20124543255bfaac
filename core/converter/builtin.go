package converter

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// BuiltinTool 纯Go后端，sips不可用时使用。
// 重新编码不会携带EXIF和ICC数据，所以元数据删除是空操作。
type BuiltinTool struct {
	logger *zap.Logger
}

// NewBuiltinTool 创建内置后端
func NewBuiltinTool(logger *zap.Logger) *BuiltinTool {
	return &BuiltinTool{logger: logger}
}

// Name 后端名称
func (b *BuiltinTool) Name() string {
	return "builtin"
}

// Dimensions 只解码头部读取尺寸
func (b *BuiltinTool) Dimensions(path string) (Dimensions, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		b.logger.Debug("读取尺寸失败", zap.String("file", path), zap.Error(err))
		return Dimensions{}, false
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, true
}

// Resize 按操作缩放并写入output
func (b *BuiltinTool) Resize(input, output string, op ResizeOp) error {
	src, err := imaging.Open(input)
	if err != nil {
		return NewToolError(b.Name(), nil, err)
	}

	var dst image.Image
	switch op.Kind {
	case ResizeFitSquare:
		// 与 sips -Z 一致：较长边等于Size，允许放大
		bounds := src.Bounds()
		if bounds.Dx() >= bounds.Dy() {
			dst = imaging.Resize(src, op.Size, 0, imaging.Lanczos)
		} else {
			dst = imaging.Resize(src, 0, op.Size, imaging.Lanczos)
		}
	case ResizeStretch:
		dst = imaging.Resize(src, op.Width, op.Height, imaging.Lanczos)
	case ResampleWidth:
		dst = imaging.Resize(src, op.Width, 0, imaging.Lanczos)
	case ResampleHeight:
		dst = imaging.Resize(src, 0, op.Height, imaging.Lanczos)
	default:
		return NewToolError(b.Name(), &ToolResult{Stderr: fmt.Sprintf("unknown resize kind %d", op.Kind)}, nil)
	}

	return b.save(dst, output, 95)
}

// Convert 重新编码为目标格式
func (b *BuiltinTool) Convert(input, output string, format OutputFormat, quality int) error {
	if _, err := imaging.FormatFromExtension(format.Extension); err != nil {
		return NewToolError(b.Name(), &ToolResult{Stderr: "format " + format.Name + " is not supported by the builtin backend"}, err)
	}

	src, err := imaging.Open(input)
	if err != nil {
		return NewToolError(b.Name(), nil, err)
	}
	return b.save(src, output, quality)
}

// DeleteProperty 重新编码后已无元数据
func (b *BuiltinTool) DeleteProperty(path, property string) error {
	return nil
}

// DeleteColorProfile 重新编码后已无色彩配置
func (b *BuiltinTool) DeleteColorProfile(path string) error {
	return nil
}

// save 按文件扩展名编码，无法识别的扩展名按PNG写入
func (b *BuiltinTool) save(img image.Image, output string, quality int) error {
	format, err := imaging.FormatFromFilename(output)
	if err != nil {
		format = imaging.PNG
	}
	if quality < 1 {
		quality = 1
	}

	f, err := os.Create(output)
	if err != nil {
		return NewFileError("create", output, err)
	}
	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(quality)); err != nil {
		f.Close()
		os.Remove(output)
		return NewToolError(b.Name(), nil, err)
	}
	if err := f.Close(); err != nil {
		return NewFileError("close", output, err)
	}
	return nil
}

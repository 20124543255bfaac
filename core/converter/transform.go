package converter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutputRecord 单个目标的处理结果
type OutputRecord struct {
	Input   string
	Output  string
	Target  Target
	Success bool
	// Resized 为false表示只做了格式转换
	Resized bool
	Before  *Dimensions
	After   *Dimensions
	Err     error
	Log     string
}

// TransformRequest 单文件单目标的转换请求
type TransformRequest struct {
	Input     string
	Output    string
	Target    Target
	Settings  *Settings
	Dims      Dimensions
	DimsKnown bool
	// TempDir 放置中间缩放文件的目录
	TempDir string
}

// Transformer 单文件转换器
type Transformer struct {
	tool     ImageTool
	stripper *MetadataStripper
	logger   *zap.Logger
}

// NewTransformer 创建转换器
func NewTransformer(tool ImageTool, logger *zap.Logger) *Transformer {
	return &Transformer{
		tool:     tool,
		stripper: NewMetadataStripper(tool, logger),
		logger:   logger,
	}
}

// PlanResize 决定缩放操作。skip为true时直接转换原文件。
// 尺寸未知时不跳过缩放。
func PlanResize(t Target, s *Settings, dims Dimensions, known bool) (op ResizeOp, skip bool) {
	if s.NeverUpscale && known && t.Contains(dims) {
		return ResizeOp{}, true
	}

	switch t.Mode {
	case ModeAssets:
		if s.PreserveAspect {
			return ResizeOp{Kind: ResizeFitSquare, Size: t.Size}, false
		}
		return ResizeOp{Kind: ResizeStretch, Width: t.Size, Height: t.Size}, false

	case ModeWidth:
		return ResizeOp{Kind: ResampleWidth, Width: t.MaxWidth}, false

	case ModeBox:
		if t.MaxWidth > 0 && t.MaxHeight > 0 {
			if !s.PreserveAspect {
				return ResizeOp{Kind: ResizeStretch, Width: t.MaxWidth, Height: t.MaxHeight}, false
			}
			if !known {
				return ResizeOp{Kind: ResizeFitSquare, Size: min(t.MaxWidth, t.MaxHeight)}, false
			}
			if dims.Width*t.MaxHeight > dims.Height*t.MaxWidth {
				return ResizeOp{Kind: ResampleWidth, Width: t.MaxWidth}, false
			}
			return ResizeOp{Kind: ResampleHeight, Height: t.MaxHeight}, false
		}

		// 单轴约束
		if s.PreserveAspect || !known {
			if t.MaxWidth > 0 {
				return ResizeOp{Kind: ResampleWidth, Width: t.MaxWidth}, false
			}
			return ResizeOp{Kind: ResampleHeight, Height: t.MaxHeight}, false
		}
		w, h := t.MaxWidth, t.MaxHeight
		if w == 0 {
			w = dims.Width
		}
		if h == 0 {
			h = dims.Height
		}
		return ResizeOp{Kind: ResizeStretch, Width: w, Height: h}, false
	}

	return ResizeOp{}, true
}

// Transform 缩放（按需）、转换格式、清理元数据。
// 中间文件在任何路径上都会被删除。
func (tr *Transformer) Transform(req TransformRequest) *OutputRecord {
	record := &OutputRecord{Input: req.Input, Target: req.Target}
	if req.DimsKnown {
		before := req.Dims
		record.Before = &before
	}

	op, skip := PlanResize(req.Target, req.Settings, req.Dims, req.DimsKnown)
	source := req.Input
	if !skip {
		tempFile := filepath.Join(req.TempDir, uuid.NewString()+filepath.Ext(req.Input))
		defer os.Remove(tempFile)

		if err := tr.tool.Resize(req.Input, tempFile, op); err != nil {
			return tr.fail(record, err)
		}
		source = tempFile
		record.Resized = true
	}

	if err := tr.tool.Convert(source, req.Output, req.Settings.Format, req.Settings.Quality); err != nil {
		return tr.fail(record, err)
	}

	if req.Settings.StripMetadata {
		tr.stripper.Strip(req.Output)
	}

	record.Success = true
	record.Output = req.Output
	if !record.Resized && record.Before != nil {
		after := *record.Before
		record.After = &after
	} else if d, ok := tr.tool.Dimensions(req.Output); ok {
		record.After = &d
	}
	record.Log = successLine(record)

	tr.logger.Debug("输出完成",
		zap.String("input", req.Input),
		zap.String("output", req.Output),
		zap.Bool("resized", record.Resized))
	return record
}

func (tr *Transformer) fail(record *OutputRecord, err error) *OutputRecord {
	record.Err = err
	record.Log = fmt.Sprintf("✗ %s: %v", filepath.Base(record.Input), err)
	tr.logger.Warn("输出失败", zap.String("input", record.Input), zap.Error(err))
	return record
}

func successLine(r *OutputRecord) string {
	line := fmt.Sprintf("✓ %s → %s", filepath.Base(r.Input), r.Output)
	switch {
	case !r.Resized && r.After != nil:
		return line + fmt.Sprintf(" (converted, not resized, %s)", r.After)
	case !r.Resized:
		return line + " (converted, not resized)"
	case r.Before != nil && r.After != nil:
		return line + fmt.Sprintf(" (%s → %s)", r.Before, r.After)
	}
	return line
}

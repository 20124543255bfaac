package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ProgressEvent 每处理完一个输入发送一次
type ProgressEvent struct {
	Index   int
	Total   int
	Input   string
	Skipped bool
	Records []*OutputRecord
	Lines   []string
}

// BatchResult 一次批处理的结果
type BatchResult struct {
	JobID     string
	Lines     []string
	Produced  []string
	Records   []*OutputRecord
	Errors    int
	Cancelled bool
	Started   time.Time
	Finished  time.Time
}

// Log 返回完整运行日志
func (r *BatchResult) Log() string {
	return strings.Join(r.Lines, "\n")
}

// Summary 汇总行
func (r *BatchResult) Summary() string {
	line := fmt.Sprintf("Done: %d file(s) produced.", len(r.Produced))
	if r.Errors > 0 {
		line += fmt.Sprintf(" %d error(s).", r.Errors)
	}
	return line
}

// Duration 运行耗时
func (r *BatchResult) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// BatchProcessor 按顺序处理输入列表
type BatchProcessor struct {
	tool        ImageTool
	transformer *Transformer
	layout      OutputLayout
	logger      *zap.Logger
}

// NewBatchProcessor 创建批处理器
func NewBatchProcessor(tool ImageTool, layout OutputLayout, logger *zap.Logger) *BatchProcessor {
	return &BatchProcessor{
		tool:        tool,
		transformer: NewTransformer(tool, logger),
		layout:      layout,
		logger:      logger,
	}
}

// Run 依次处理每个输入。ctx只在输入之间检查，正在执行的工具进程不会被中断。
// 已写入的文件在取消时保留。
func (bp *BatchProcessor) Run(ctx context.Context, inputs []string, s *Settings, progress func(ProgressEvent)) *BatchResult {
	result := &BatchResult{Started: time.Now()}

	tempDir, err := os.MkdirTemp("", "sizely-*")
	if err != nil {
		bp.logger.Warn("创建临时目录失败，使用系统临时目录", zap.Error(err))
		tempDir = os.TempDir()
	} else {
		defer os.RemoveAll(tempDir)
	}

	bp.logger.Info("开始批处理",
		zap.Int("inputs", len(inputs)),
		zap.String("mode", string(s.Mode)),
		zap.String("format", s.Format.Name))

	// 输入文件和本次已分配的输出路径都不能被覆盖
	claimed := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		claimed[filepath.Clean(input)] = true
	}

	for i, input := range inputs {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}

		event := ProgressEvent{Index: i + 1, Total: len(inputs), Input: input}
		records, lines, skipped := bp.processInput(input, s, tempDir, claimed)
		event.Skipped = skipped
		event.Records = records
		event.Lines = lines

		result.Lines = append(result.Lines, lines...)
		result.Records = append(result.Records, records...)
		succeeded := 0
		for _, r := range records {
			if r.Success {
				succeeded++
				result.Produced = append(result.Produced, r.Output)
			}
		}
		if !skipped && succeeded == 0 {
			result.Errors++
		}

		if progress != nil {
			progress(event)
		}
	}

	if result.Cancelled {
		result.Lines = append(result.Lines, "Cancelled.")
	}
	result.Lines = append(result.Lines, result.Summary())
	result.Finished = time.Now()

	bp.logger.Info("批处理结束",
		zap.Int("produced", len(result.Produced)),
		zap.Int("errors", result.Errors),
		zap.Bool("cancelled", result.Cancelled),
		zap.Duration("duration", result.Duration()))
	return result
}

// processInput 处理单个输入的全部目标。skipped表示输入已不存在。
func (bp *BatchProcessor) processInput(input string, s *Settings, tempDir string, claimed map[string]bool) ([]*OutputRecord, []string, bool) {
	if _, err := os.Stat(input); os.IsNotExist(err) {
		bp.logger.Debug("输入文件已不存在，跳过", zap.String("file", input))
		return nil, nil, true
	}

	outDir := bp.layout.Dir(input, s)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		ferr := NewFileError("create output folder", outDir, err)
		bp.logger.Error("创建输出目录失败", zap.String("dir", outDir), zap.Error(err))
		return nil, []string{fmt.Sprintf("✗ %s: %v", filepath.Base(input), ferr)}, false
	}

	dims, known := bp.tool.Dimensions(input)
	if !known {
		bp.logger.Debug("尺寸未知，按需缩放", zap.String("file", input))
	}

	targets := s.Targets()
	records := make([]*OutputRecord, 0, len(targets))
	lines := make([]string, 0, len(targets))
	for _, target := range targets {
		planned := filepath.Join(outDir, bp.layout.FileName(input, target, s))
		output := claimOutput(planned, claimed)
		if output != filepath.Clean(planned) {
			bp.logger.Debug("输出路径已被占用，改名", zap.String("input", input), zap.String("output", output))
		}
		record := bp.transformer.Transform(TransformRequest{
			Input:     input,
			Output:    output,
			Target:    target,
			Settings:  s,
			Dims:      dims,
			DimsKnown: known,
			TempDir:   tempDir,
		})
		records = append(records, record)
		lines = append(lines, record.Log)
	}
	return records, lines, false
}

// claimOutput 路径被输入或本次其他输出占用时追加 -2、-3 等后缀
func claimOutput(path string, claimed map[string]bool) string {
	path = filepath.Clean(path)
	candidate := path
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 2; claimed[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
	claimed[candidate] = true
	return candidate
}

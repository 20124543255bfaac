package converter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestPlanResizeNeverUpscale(t *testing.T) {
	s := &Settings{Mode: ModeWidth, MaxWidth: 200, NeverUpscale: true, PreserveAspect: true}
	target := s.Targets()[0]

	if _, skip := PlanResize(target, s, Dimensions{Width: 100, Height: 50}, true); !skip {
		t.Error("Expected resize to be skipped for image within bounds")
	}
	if _, skip := PlanResize(target, s, Dimensions{Width: 300, Height: 50}, true); skip {
		t.Error("Expected resize for image wider than target")
	}
	// 尺寸未知时仍然缩放
	if _, skip := PlanResize(target, s, Dimensions{}, false); skip {
		t.Error("Expected resize when dimensions are unknown")
	}

	s.NeverUpscale = false
	op, skip := PlanResize(target, s, Dimensions{Width: 100, Height: 50}, true)
	if skip || op.Kind != ResampleWidth || op.Width != 200 {
		t.Errorf("Expected resample to width 200, got %+v (skip=%v)", op, skip)
	}
}

func TestPlanResizeAssets(t *testing.T) {
	s := &Settings{Mode: ModeAssets, BaseSize: 30, PreserveAspect: true}
	targets := s.Targets()
	if len(targets) != 3 {
		t.Fatalf("Expected 3 targets, got %d", len(targets))
	}
	for i, want := range []int{30, 60, 90} {
		op, _ := PlanResize(targets[i], s, Dimensions{Width: 500, Height: 400}, true)
		if op.Kind != ResizeFitSquare || op.Size != want {
			t.Errorf("Target %d: expected fit square %d, got %+v", i, want, op)
		}
	}

	s.PreserveAspect = false
	op, _ := PlanResize(targets[1], s, Dimensions{Width: 500, Height: 400}, true)
	if op.Kind != ResizeStretch || op.Width != 60 || op.Height != 60 {
		t.Errorf("Expected stretch 60x60, got %+v", op)
	}
}

// 宽度重采样当且仅当 w*maxH > h*maxW
func TestPlanResizeBoxAxisChoice(t *testing.T) {
	s := &Settings{Mode: ModeBox, MaxWidth: 200, MaxHeight: 100, PreserveAspect: true}
	target := s.Targets()[0]

	for w := 1; w <= 600; w += 37 {
		for h := 1; h <= 600; h += 41 {
			op, skip := PlanResize(target, s, Dimensions{Width: w, Height: h}, true)
			if skip {
				t.Fatalf("Unexpected skip for %dx%d", w, h)
			}
			byWidth := w*target.MaxHeight > h*target.MaxWidth
			if byWidth && op.Kind != ResampleWidth {
				t.Errorf("%dx%d: expected resample by width, got %+v", w, h, op)
			}
			if !byWidth && op.Kind != ResampleHeight {
				t.Errorf("%dx%d: expected resample by height, got %+v", w, h, op)
			}
		}
	}

	// 宽高比相同时按高度
	op, _ := PlanResize(target, s, Dimensions{Width: 400, Height: 200}, true)
	if op.Kind != ResampleHeight {
		t.Errorf("Expected tie to resample by height, got %+v", op)
	}
}

func TestPlanResizeBoxVariants(t *testing.T) {
	cases := []struct {
		name     string
		settings Settings
		dims     Dimensions
		known    bool
		want     ResizeOp
	}{
		{"both axes unknown dims", Settings{Mode: ModeBox, MaxWidth: 200, MaxHeight: 100, PreserveAspect: true}, Dimensions{}, false,
			ResizeOp{Kind: ResizeFitSquare, Size: 100}},
		{"both axes stretch", Settings{Mode: ModeBox, MaxWidth: 200, MaxHeight: 100}, Dimensions{Width: 50, Height: 50}, true,
			ResizeOp{Kind: ResizeStretch, Width: 200, Height: 100}},
		{"width only preserve", Settings{Mode: ModeBox, MaxWidth: 200, PreserveAspect: true}, Dimensions{Width: 400, Height: 300}, true,
			ResizeOp{Kind: ResampleWidth, Width: 200}},
		{"height only preserve", Settings{Mode: ModeBox, MaxHeight: 100, PreserveAspect: true}, Dimensions{Width: 400, Height: 300}, true,
			ResizeOp{Kind: ResampleHeight, Height: 100}},
		{"width only stretch", Settings{Mode: ModeBox, MaxWidth: 200}, Dimensions{Width: 400, Height: 300}, true,
			ResizeOp{Kind: ResizeStretch, Width: 200, Height: 300}},
		{"height only stretch unknown", Settings{Mode: ModeBox, MaxHeight: 100}, Dimensions{}, false,
			ResizeOp{Kind: ResampleHeight, Height: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			op, skip := PlanResize(tc.settings.Targets()[0], &tc.settings, tc.dims, tc.known)
			if skip {
				t.Fatal("Unexpected skip")
			}
			if op != tc.want {
				t.Errorf("Expected %+v, got %+v", tc.want, op)
			}
		})
	}
}

func TestPlanResizeWithinBounds(t *testing.T) {
	assets := Settings{Mode: ModeAssets, BaseSize: 30, NeverUpscale: true, PreserveAspect: true}
	widthOnly := Settings{Mode: ModeBox, MaxWidth: 200, NeverUpscale: true, PreserveAspect: true}
	heightOnly := Settings{Mode: ModeBox, MaxHeight: 100, NeverUpscale: true}

	cases := []struct {
		name     string
		settings Settings
		target   int
		dims     Dimensions
		skip     bool
	}{
		{"asset 1x larger", assets, 0, Dimensions{Width: 50, Height: 40}, false},
		{"asset 2x within", assets, 1, Dimensions{Width: 50, Height: 40}, true},
		{"asset 3x within", assets, 2, Dimensions{Width: 50, Height: 40}, true},
		{"asset 2x taller", assets, 1, Dimensions{Width: 50, Height: 61}, false},
		{"asset 3x exact", assets, 2, Dimensions{Width: 90, Height: 90}, true},
		{"asset 1x wide", assets, 0, Dimensions{Width: 31, Height: 10}, false},
		{"box width only within", widthOnly, 0, Dimensions{Width: 150, Height: 900}, true},
		{"box width only wider", widthOnly, 0, Dimensions{Width: 250, Height: 10}, false},
		{"box height only within", heightOnly, 0, Dimensions{Width: 900, Height: 80}, true},
		{"box height only taller", heightOnly, 0, Dimensions{Width: 10, Height: 150}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := tc.settings.Targets()[tc.target]
			if got := target.Contains(tc.dims); got != tc.skip {
				t.Errorf("Contains(%s) = %v, expected %v", tc.dims, got, tc.skip)
			}
			if _, skip := PlanResize(target, &tc.settings, tc.dims, true); skip != tc.skip {
				t.Errorf("Expected skip=%v for %s, got %v", tc.skip, tc.dims, skip)
			}
		})
	}
}

func TestTransformAssetWithinBoundsKeepsDimensions(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "icon.png")
	if err := os.WriteFile(input, []byte("png"), 0644); err != nil {
		t.Fatalf("创建输入文件失败: %v", err)
	}
	png, _ := LookupFormat("png")
	s := &Settings{Mode: ModeAssets, BaseSize: 30, NeverUpscale: true, PreserveAspect: true, Format: png}
	before := Dimensions{Width: 50, Height: 40}

	tool := newFakeTool()
	tr := NewTransformer(tool, zap.NewNop())
	for _, target := range s.Targets()[1:] {
		record := tr.Transform(TransformRequest{
			Input: input, Output: filepath.Join(dir, "icon"+nameSuffix(target, s)+".png"),
			Target: target, Settings: s, Dims: before, DimsKnown: true, TempDir: dir,
		})
		if !record.Success || record.Resized {
			t.Fatalf("@%dx: expected conversion without resize, got %+v", target.Scale, record)
		}
		if record.After == nil || *record.After != before {
			t.Errorf("@%dx: expected output dimensions %s, got %v", target.Scale, before, record.After)
		}
	}
	if len(tool.resizes) != 0 {
		t.Errorf("Expected no resize calls, got %d", len(tool.resizes))
	}
}

func TestTransformConvertedNotResized(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.png")
	output := filepath.Join(dir, "in_w200.png")
	if err := os.WriteFile(input, []byte("png"), 0644); err != nil {
		t.Fatalf("创建输入文件失败: %v", err)
	}
	png, _ := LookupFormat("png")
	s := &Settings{Mode: ModeWidth, MaxWidth: 200, NeverUpscale: true, PreserveAspect: true, Format: png}

	tool := newFakeTool()
	tr := NewTransformer(tool, zap.NewNop())
	record := tr.Transform(TransformRequest{
		Input: input, Output: output, Target: s.Targets()[0], Settings: s,
		Dims: Dimensions{Width: 100, Height: 50}, DimsKnown: true, TempDir: dir,
	})

	if !record.Success || record.Resized {
		t.Fatalf("Expected success without resize, got %+v", record)
	}
	if len(tool.resizes) != 0 {
		t.Errorf("Expected no resize calls, got %d", len(tool.resizes))
	}
	if tool.sources[0] != input {
		t.Errorf("Expected original file to be converted, got %s", tool.sources[0])
	}
	if record.After == nil || *record.After != (Dimensions{Width: 100, Height: 50}) {
		t.Errorf("Expected output dimensions 100x50, got %v", record.After)
	}
	if !strings.Contains(record.Log, "converted, not resized") || !strings.Contains(record.Log, "100x50") {
		t.Errorf("Unexpected log line: %s", record.Log)
	}
}

func TestTransformRemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	tempDir := t.TempDir()
	input := filepath.Join(dir, "in.jpeg")
	os.WriteFile(input, []byte("jpeg"), 0644)
	jpeg, _ := LookupFormat("jpeg")
	s := &Settings{Mode: ModeWidth, MaxWidth: 200, Format: jpeg, Quality: 80}

	for _, failConvert := range []bool{false, true} {
		tool := newFakeTool()
		if failConvert {
			tool.failConvert[".jpg"] = true
		}
		tr := NewTransformer(tool, zap.NewNop())
		record := tr.Transform(TransformRequest{
			Input: input, Output: filepath.Join(dir, "out.jpg"), Target: s.Targets()[0], Settings: s, TempDir: tempDir,
		})

		if record.Success == failConvert {
			t.Errorf("failConvert=%v: unexpected success=%v", failConvert, record.Success)
		}
		if len(tool.resizeOut) != 1 {
			t.Fatalf("Expected one resize, got %d", len(tool.resizeOut))
		}
		if _, err := os.Stat(tool.resizeOut[0]); !os.IsNotExist(err) {
			t.Errorf("failConvert=%v: temp file %s still exists", failConvert, tool.resizeOut[0])
		}
	}
}

func TestTransformFailureLog(t *testing.T) {
	dir := t.TempDir()
	png, _ := LookupFormat("png")
	s := &Settings{Mode: ModeWidth, MaxWidth: 200, Format: png}

	tool := newFakeTool()
	tool.failResize = true
	tr := NewTransformer(tool, zap.NewNop())
	record := tr.Transform(TransformRequest{
		Input: filepath.Join(dir, "bad.png"), Output: filepath.Join(dir, "out.png"), Target: s.Targets()[0], Settings: s, TempDir: dir,
	})

	if record.Success || record.Output != "" {
		t.Fatalf("Expected failure without output path, got %+v", record)
	}
	if record.Log != "✗ bad.png: fake: Error: cannot resize" {
		t.Errorf("Unexpected log line: %s", record.Log)
	}
	if !IsErrorType(record.Err, ErrorTypeToolExecution) {
		t.Errorf("Expected tool execution error, got %v", record.Err)
	}
	if len(tool.converts) != 0 {
		t.Error("Convert must not run after a failed resize")
	}
}

func TestTransformStripMetadataIgnoresFailures(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.png")
	os.WriteFile(input, []byte("png"), 0644)
	png, _ := LookupFormat("png")
	s := &Settings{Mode: ModeWidth, MaxWidth: 200, Format: png, StripMetadata: true}

	tool := newFakeTool()
	tool.failProperty = true
	tr := NewTransformer(tool, zap.NewNop())
	record := tr.Transform(TransformRequest{
		Input: input, Output: filepath.Join(dir, "out.png"), Target: s.Targets()[0], Settings: s, TempDir: dir,
	})

	if !record.Success {
		t.Fatalf("Metadata failures must not fail the transform: %v", record.Err)
	}
	if len(tool.properties) != len(strippedProperties) {
		t.Errorf("Expected %d property deletions, got %d", len(strippedProperties), len(tool.properties))
	}
	if tool.colorCalls != 1 {
		t.Errorf("Expected color profile removal, got %d calls", tool.colorCalls)
	}
}

package converter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

var testLayout = OutputLayout{AssetsFolder: "Assets", ResizedFolder: "Resized"}

func writeInputs(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	var paths []string
	for _, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("img"), 0644); err != nil {
			t.Fatalf("创建输入文件失败: %v", err)
		}
		paths = append(paths, p)
	}
	return paths
}

func TestBatchAssetSet(t *testing.T) {
	dir := t.TempDir()
	inputs := writeInputs(t, dir, "name.png")
	png, _ := LookupFormat("png")
	s := &Settings{Mode: ModeAssets, BaseSize: 30, PreserveAspect: true, NeverUpscale: true, Format: png}

	tool := newFakeTool()
	tool.dims[inputs[0]] = Dimensions{Width: 512, Height: 512}
	bp := NewBatchProcessor(tool, testLayout, zap.NewNop())
	result := bp.Run(context.Background(), inputs, s, nil)

	want := []string{
		filepath.Join(dir, "Assets", "name_30.png"),
		filepath.Join(dir, "Assets", "name@2x.png"),
		filepath.Join(dir, "Assets", "name@3x.png"),
	}
	if len(result.Produced) != len(want) {
		t.Fatalf("Expected %d outputs, got %v", len(want), result.Produced)
	}
	for i := range want {
		if result.Produced[i] != want[i] {
			t.Errorf("Output %d: expected %s, got %s", i, want[i], result.Produced[i])
		}
	}
	for i, size := range []int{30, 60, 90} {
		if tool.resizes[i].Size != size {
			t.Errorf("Resize %d: expected size %d, got %d", i, size, tool.resizes[i].Size)
		}
	}
	if last := result.Lines[len(result.Lines)-1]; last != "Done: 3 file(s) produced." {
		t.Errorf("Unexpected summary: %s", last)
	}
}

func TestBatchMissingInputSkipped(t *testing.T) {
	dir := t.TempDir()
	inputs := writeInputs(t, dir, "a.png", "b.png", "c.png")
	os.Remove(inputs[1])
	png, _ := LookupFormat("png")
	s := &Settings{Mode: ModeWidth, MaxWidth: 100, Format: png}

	var events []ProgressEvent
	bp := NewBatchProcessor(newFakeTool(), testLayout, zap.NewNop())
	result := bp.Run(context.Background(), inputs, s, func(ev ProgressEvent) {
		events = append(events, ev)
	})

	if len(result.Produced) != 2 {
		t.Errorf("Expected 2 outputs, got %d", len(result.Produced))
	}
	if result.Errors != 0 {
		t.Errorf("Missing input must not count as error, got %d", result.Errors)
	}
	if len(events) != 3 || !events[1].Skipped {
		t.Errorf("Expected 3 progress events with the second skipped, got %+v", events)
	}
	if _, err := os.Stat(filepath.Join(dir, "Resized", "c_w100.png")); err != nil {
		t.Errorf("Expected c_w100.png to be written: %v", err)
	}
}

func TestBatchErrorCounting(t *testing.T) {
	dir := t.TempDir()
	inputs := writeInputs(t, dir, "a.png", "b.png")
	png, _ := LookupFormat("png")
	s := &Settings{Mode: ModeAssets, BaseSize: 10, PreserveAspect: true, Format: png}

	tool := newFakeTool()
	// a 只有 @3x 失败，b 全部失败
	tool.failConvert["a@3x.png"] = true
	tool.failConvert["b_10.png"] = true
	tool.failConvert["b@2x.png"] = true
	tool.failConvert["b@3x.png"] = true

	bp := NewBatchProcessor(tool, testLayout, zap.NewNop())
	result := bp.Run(context.Background(), inputs, s, nil)

	if len(result.Produced) != 2 {
		t.Errorf("Expected 2 outputs, got %v", result.Produced)
	}
	if result.Errors != 1 {
		t.Errorf("Expected 1 error, got %d", result.Errors)
	}
	if !strings.HasSuffix(result.Log(), "Done: 2 file(s) produced. 1 error(s).") {
		t.Errorf("Unexpected log:\n%s", result.Log())
	}
	if len(tool.converts) != 6 {
		t.Errorf("A failed target must not stop its siblings, got %d converts", len(tool.converts))
	}
}

func TestBatchOutputDirFailure(t *testing.T) {
	dir := t.TempDir()
	inputs := writeInputs(t, dir, "a.png")
	// 用同名文件占住输出目录
	if err := os.WriteFile(filepath.Join(dir, "Resized"), []byte("x"), 0644); err != nil {
		t.Fatalf("创建占位文件失败: %v", err)
	}
	png, _ := LookupFormat("png")
	s := &Settings{Mode: ModeWidth, MaxWidth: 100, Format: png}

	tool := newFakeTool()
	bp := NewBatchProcessor(tool, testLayout, zap.NewNop())
	result := bp.Run(context.Background(), inputs, s, nil)

	if result.Errors != 1 || len(result.Produced) != 0 {
		t.Errorf("Expected one error and no outputs, got %d / %v", result.Errors, result.Produced)
	}
	if len(tool.converts) != 0 {
		t.Error("Input must be skipped when its folder cannot be created")
	}
	if !strings.HasPrefix(result.Lines[0], "✗ a.png:") {
		t.Errorf("Unexpected log line: %s", result.Lines[0])
	}
}

func TestBatchCancelled(t *testing.T) {
	dir := t.TempDir()
	inputs := writeInputs(t, dir, "a.png", "b.png", "c.png")
	png, _ := LookupFormat("png")
	s := &Settings{Mode: ModeWidth, MaxWidth: 100, Format: png}

	ctx, cancel := context.WithCancel(context.Background())
	bp := NewBatchProcessor(newFakeTool(), testLayout, zap.NewNop())
	result := bp.Run(ctx, inputs, s, func(ev ProgressEvent) {
		if ev.Index == 1 {
			cancel()
		}
	})

	if !result.Cancelled {
		t.Fatal("Expected batch to be cancelled")
	}
	if len(result.Produced) != 1 {
		t.Errorf("Expected 1 output before cancellation, got %d", len(result.Produced))
	}
	if _, err := os.Stat(result.Produced[0]); err != nil {
		t.Errorf("Files written before cancellation must be kept: %v", err)
	}
	n := len(result.Lines)
	if result.Lines[n-2] != "Cancelled." || result.Lines[n-1] != "Done: 1 file(s) produced." {
		t.Errorf("Unexpected tail: %v", result.Lines[n-2:])
	}
}

func TestBatchFolderDestination(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	inputs := writeInputs(t, dir, "photo.png")
	jpeg, _ := LookupFormat("jpeg")
	s := &Settings{Mode: ModeBox, MaxWidth: 200, MaxHeight: 100, Format: jpeg, Quality: 80,
		Destination: DestFolder, CustomDir: outDir}

	bp := NewBatchProcessor(newFakeTool(), testLayout, zap.NewNop())
	result := bp.Run(context.Background(), inputs, s, nil)

	want := filepath.Join(outDir, "Resized", "photo_200x100.jpg")
	if len(result.Produced) != 1 || result.Produced[0] != want {
		t.Errorf("Expected %s, got %v", want, result.Produced)
	}
}

func TestBatchInPlaceNeverOverwritesInput(t *testing.T) {
	dir := t.TempDir()
	inputs := writeInputs(t, dir, "photo.png")
	png, _ := LookupFormat("png")
	s := &Settings{Mode: ModeWidth, MaxWidth: 200, KeepFilename: true, Destination: DestInPlace, Format: png}

	tool := newFakeTool()
	tool.dims[inputs[0]] = Dimensions{Width: 400, Height: 300}
	bp := NewBatchProcessor(tool, testLayout, zap.NewNop())
	result := bp.Run(context.Background(), inputs, s, nil)

	want := filepath.Join(dir, "photo-2.png")
	if len(result.Produced) != 1 || result.Produced[0] != want {
		t.Fatalf("Expected %s, got %v", want, result.Produced)
	}
	for _, out := range tool.converts {
		if out == inputs[0] {
			t.Errorf("Input was used as an output: %s", out)
		}
	}
	data, err := os.ReadFile(inputs[0])
	if err != nil || string(data) != "img" {
		t.Errorf("Input must stay untouched, got %q (%v)", data, err)
	}
}

func TestBatchInPlaceSkipsOtherInputs(t *testing.T) {
	dir := t.TempDir()
	// a.jpg 转成 a.png 时不能覆盖同批次的 a.png
	inputs := writeInputs(t, dir, "a.jpg", "a.png")
	png, _ := LookupFormat("png")
	s := &Settings{Mode: ModeWidth, MaxWidth: 200, KeepFilename: true, Destination: DestInPlace, Format: png}

	bp := NewBatchProcessor(newFakeTool(), testLayout, zap.NewNop())
	result := bp.Run(context.Background(), inputs, s, nil)

	want := []string{filepath.Join(dir, "a-2.png"), filepath.Join(dir, "a-3.png")}
	if len(result.Produced) != 2 || result.Produced[0] != want[0] || result.Produced[1] != want[1] {
		t.Errorf("Expected %v, got %v", want, result.Produced)
	}
}

func TestBatchFolderDestinationSameStem(t *testing.T) {
	root := t.TempDir()
	outDir := t.TempDir()
	for _, sub := range []string{"a", "b"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0755); err != nil {
			t.Fatalf("创建目录失败: %v", err)
		}
	}
	first := writeInputs(t, filepath.Join(root, "a"), "x.png")
	second := writeInputs(t, filepath.Join(root, "b"), "x.png")
	inputs := append(first, second...)

	png, _ := LookupFormat("png")
	s := &Settings{Mode: ModeWidth, MaxWidth: 200, Format: png, Destination: DestFolder, CustomDir: outDir}

	bp := NewBatchProcessor(newFakeTool(), testLayout, zap.NewNop())
	result := bp.Run(context.Background(), inputs, s, nil)

	want := []string{
		filepath.Join(outDir, "Resized", "x_w200.png"),
		filepath.Join(outDir, "Resized", "x_w200-2.png"),
	}
	if len(result.Produced) != 2 || result.Produced[0] != want[0] || result.Produced[1] != want[1] {
		t.Fatalf("Expected %v, got %v", want, result.Produced)
	}
	for _, p := range want {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected %s to exist: %v", p, err)
		}
	}
}

func TestClaimOutput(t *testing.T) {
	claimed := map[string]bool{"/d/x.png": true, "/d/x-2.png": true}
	if got := claimOutput("/d/x.png", claimed); got != "/d/x-3.png" {
		t.Errorf("Expected /d/x-3.png, got %s", got)
	}
	if got := claimOutput("/d/y.png", claimed); got != "/d/y.png" {
		t.Errorf("Expected free path to be kept, got %s", got)
	}
	if !claimed["/d/x-3.png"] || !claimed["/d/y.png"] {
		t.Error("Expected returned paths to be claimed")
	}
}

package converter

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// fakeTool 记录调用的ImageTool，Resize/Convert写入空文件
type fakeTool struct {
	mu sync.Mutex

	dims         map[string]Dimensions
	failResize   bool
	failConvert  map[string]bool
	failProperty bool

	resizes    []ResizeOp
	resizeOut  []string
	converts   []string
	sources    []string
	properties []string
	colorCalls int
}

func newFakeTool() *fakeTool {
	return &fakeTool{
		dims:        make(map[string]Dimensions),
		failConvert: make(map[string]bool),
	}
}

func (f *fakeTool) Name() string { return "fake" }

func (f *fakeTool) Dimensions(path string) (Dimensions, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.dims[path]
	return d, ok
}

func (f *fakeTool) Resize(input, output string, op ResizeOp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resizes = append(f.resizes, op)
	f.resizeOut = append(f.resizeOut, output)
	if f.failResize {
		return NewToolError("fake", &ToolResult{ExitCode: 1, Stderr: "Error: cannot resize"}, errors.New("exit status 1"))
	}
	return os.WriteFile(output, []byte("resized"), 0644)
}

func (f *fakeTool) Convert(input, output string, format OutputFormat, quality int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.converts = append(f.converts, output)
	f.sources = append(f.sources, input)
	for suffix := range f.failConvert {
		if strings.HasSuffix(output, suffix) {
			return NewToolError("fake", &ToolResult{ExitCode: 1, Stderr: "Error: cannot convert"}, errors.New("exit status 1"))
		}
	}
	return os.WriteFile(output, []byte("converted"), 0644)
}

func (f *fakeTool) DeleteProperty(path, property string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.properties = append(f.properties, property)
	if f.failProperty {
		return errors.New("property not found")
	}
	return nil
}

func (f *fakeTool) DeleteColorProfile(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.colorCalls++
	return nil
}

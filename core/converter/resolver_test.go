package converter

import (
	"os"
	"testing"

	"sizely/core/preset"
)

func baseRaw() RawSettings {
	return RawSettings{
		Mode:           "assets",
		PresetIndex:    0,
		Format:         "png",
		Quality:        85,
		PreserveAspect: true,
	}
}

func TestResolveSettingsAssets(t *testing.T) {
	presets := preset.Defaults()

	s, err := ResolveSettings(baseRaw(), presets)
	if err != nil {
		t.Fatalf("ResolveSettings failed: %v", err)
	}
	if s.BaseSize != presets[0].Size {
		t.Errorf("Expected base %d, got %d", presets[0].Size, s.BaseSize)
	}

	raw := baseRaw()
	raw.PresetIndex = CustomPresetIndex
	raw.CustomBase = " 30 "
	s, err = ResolveSettings(raw, presets)
	if err != nil {
		t.Fatalf("ResolveSettings failed: %v", err)
	}
	targets := s.Targets()
	for i, want := range []int{30, 60, 90} {
		if targets[i].Size != want || targets[i].Scale != i+1 {
			t.Errorf("Target %d: expected %d@%dx, got %+v", i, want, i+1, targets[i])
		}
	}
	if s.KeepFilename {
		t.Error("Keep filename must be ignored in asset mode")
	}
}

func TestResolveSettingsRejectsBadSizes(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(r *RawSettings)
		field string
	}{
		{"custom base zero", func(r *RawSettings) { r.PresetIndex = CustomPresetIndex; r.CustomBase = "0" }, "base_size"},
		{"custom base text", func(r *RawSettings) { r.PresetIndex = CustomPresetIndex; r.CustomBase = "abc" }, "base_size"},
		{"preset out of range", func(r *RawSettings) { r.PresetIndex = 99 }, "preset"},
		{"width negative", func(r *RawSettings) { r.Mode = "width"; r.Width = "-5" }, "width"},
		{"width empty", func(r *RawSettings) { r.Mode = "width" }, "width"},
		{"box bad height", func(r *RawSettings) { r.Mode = "box"; r.Width = "10"; r.Height = "x" }, "height"},
		{"box empty", func(r *RawSettings) { r.Mode = "box"; r.Width = "0" }, "size"},
		{"quality", func(r *RawSettings) { r.Quality = 101 }, "quality"},
		{"format", func(r *RawSettings) { r.Format = "webp" }, "format"},
		{"mode", func(r *RawSettings) { r.Mode = "zoom" }, "mode"},
		{"folder without dir", func(r *RawSettings) { r.Destination = "folder" }, "custom_dir"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := baseRaw()
			tc.edit(&raw)
			_, err := ResolveSettings(raw, preset.Defaults())
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("Expected *ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("Expected field %s, got %s", tc.field, ve.Field)
			}
		})
	}
}

func TestResolveSettingsBox(t *testing.T) {
	raw := baseRaw()
	raw.Mode = "fit-box"
	raw.Height = "120"
	raw.KeepFilename = true
	raw.Destination = "inplace"

	s, err := ResolveSettings(raw, nil)
	if err != nil {
		t.Fatalf("ResolveSettings failed: %v", err)
	}
	if s.MaxWidth != 0 || s.MaxHeight != 120 {
		t.Errorf("Expected 0x120 box, got %dx%d", s.MaxWidth, s.MaxHeight)
	}
	if !s.KeepFilename || s.Destination != DestInPlace {
		t.Errorf("Unexpected flags: %+v", s)
	}
}

// 校验失败时不会写入任何文件
func TestValidationErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	inputs := writeInputs(t, dir, "a.png")
	raw := baseRaw()
	raw.Mode = "width"
	raw.Width = "0"

	s, err := ResolveSettings(raw, nil)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if s != nil {
		t.Fatal("No settings must be returned on validation error")
	}
	if !IsErrorType(err, ErrorTypeValidation) {
		t.Errorf("Expected validation error type, got %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("读取目录失败: %v", err)
	}
	if len(entries) != len(inputs) {
		t.Errorf("Expected only the inputs in %s, got %d entries", dir, len(entries))
	}
}

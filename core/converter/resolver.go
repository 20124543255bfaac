package converter

import (
	"strconv"
	"strings"

	"sizely/core/preset"
)

// Destination 输出位置选择
type Destination string

const (
	// DestSibling 输入文件旁的子目录
	DestSibling Destination = "sibling"
	// DestInPlace 与输入文件同目录
	DestInPlace Destination = "inplace"
	// DestFolder 用户选择的目录
	DestFolder Destination = "folder"
)

// CustomPresetIndex 表示使用自定义基准尺寸而非预设
const CustomPresetIndex = -1

// RawSettings 用户输入的原始设置
type RawSettings struct {
	Mode           string
	PresetIndex    int
	CustomBase     string
	Width          string
	Height         string
	Format         string
	Quality        int
	NeverUpscale   bool
	PreserveAspect bool
	KeepFilename   bool
	StripMetadata  bool
	Destination    string
	CustomDir      string
}

// Settings 校验后的具体设置
type Settings struct {
	Mode           ScaleMode
	BaseSize       int
	MaxWidth       int
	MaxHeight      int
	Format         OutputFormat
	Quality        int
	NeverUpscale   bool
	PreserveAspect bool
	KeepFilename   bool
	StripMetadata  bool
	Destination    Destination
	CustomDir      string
}

// Targets 返回每个输入需要生成的目标，顺序即输出顺序
func (s *Settings) Targets() []Target {
	if s.Mode == ModeAssets {
		multiples := scaleModes[ModeAssets].multiples
		targets := make([]Target, 0, len(multiples))
		for _, m := range multiples {
			targets = append(targets, Target{Mode: ModeAssets, Size: s.BaseSize * m, Scale: m})
		}
		return targets
	}
	return []Target{{Mode: s.Mode, Scale: 1, MaxWidth: s.MaxWidth, MaxHeight: s.MaxHeight}}
}

// ResolveSettings 把原始设置转换成具体整数目标并校验。
// 返回错误时不会触碰任何文件。
func ResolveSettings(raw RawSettings, presets []preset.Preset) (*Settings, error) {
	mode, ok := ParseScaleMode(raw.Mode)
	if !ok {
		return nil, &ValidationError{Field: "mode", Value: raw.Mode, Message: "must be one of assets, width, box"}
	}

	format, ok := LookupFormat(raw.Format)
	if !ok {
		return nil, &ValidationError{Field: "format", Value: raw.Format, Message: "must be one of " + strings.Join(FormatNames(), ", ")}
	}

	if raw.Quality < 0 || raw.Quality > 100 {
		return nil, &ValidationError{Field: "quality", Value: raw.Quality, Message: "must be between 0 and 100"}
	}

	s := &Settings{
		Mode:           mode,
		Format:         format,
		Quality:        raw.Quality,
		NeverUpscale:   raw.NeverUpscale,
		PreserveAspect: raw.PreserveAspect,
		KeepFilename:   raw.KeepFilename && mode.IsFit(),
		StripMetadata:  raw.StripMetadata,
	}

	switch mode {
	case ModeAssets:
		base, err := resolveBaseSize(raw, presets)
		if err != nil {
			return nil, err
		}
		s.BaseSize = base
	case ModeWidth:
		w, err := parsePositive("width", raw.Width, "max width")
		if err != nil {
			return nil, err
		}
		s.MaxWidth = w
	case ModeBox:
		w, err := parseNonNegative("width", raw.Width, "max width")
		if err != nil {
			return nil, err
		}
		h, err := parseNonNegative("height", raw.Height, "max height")
		if err != nil {
			return nil, err
		}
		if w == 0 && h == 0 {
			return nil, &ValidationError{Field: "size", Message: "fit within box needs a width or height"}
		}
		s.MaxWidth, s.MaxHeight = w, h
	}

	dest, err := resolveDestination(raw)
	if err != nil {
		return nil, err
	}
	s.Destination = dest
	if dest == DestFolder {
		s.CustomDir = strings.TrimSpace(raw.CustomDir)
	}

	return s, nil
}

// resolveBaseSize 预设索引优先，否则使用自定义输入
func resolveBaseSize(raw RawSettings, presets []preset.Preset) (int, error) {
	if raw.PresetIndex != CustomPresetIndex {
		if raw.PresetIndex < 0 || raw.PresetIndex >= len(presets) {
			return 0, &ValidationError{Field: "preset", Value: raw.PresetIndex, Message: "no preset at this index"}
		}
		size := presets[raw.PresetIndex].Size
		if size <= 0 {
			return 0, &ValidationError{Field: "base_size", Value: size, Message: "base size must be a positive integer"}
		}
		return size, nil
	}
	return parsePositive("base_size", raw.CustomBase, "base size")
}

func resolveDestination(raw RawSettings) (Destination, error) {
	switch Destination(strings.ToLower(strings.TrimSpace(raw.Destination))) {
	case "", DestSibling:
		return DestSibling, nil
	case DestInPlace:
		return DestInPlace, nil
	case DestFolder:
		if strings.TrimSpace(raw.CustomDir) == "" {
			return "", &ValidationError{Field: "custom_dir", Message: "an output folder must be chosen"}
		}
		return DestFolder, nil
	}
	return "", &ValidationError{Field: "destination", Value: raw.Destination, Message: "must be one of sibling, inplace, folder"}
}

func parsePositive(field, value, label string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return 0, &ValidationError{Field: field, Value: value, Message: label + " must be a positive integer"}
	}
	return n, nil
}

// parseNonNegative 空字符串视为0
func parseNonNegative(field, value, label string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, &ValidationError{Field: field, Value: value, Message: label + " must be zero or a positive integer"}
	}
	return n, nil
}

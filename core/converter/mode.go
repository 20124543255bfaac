package converter

import (
	"fmt"
	"strings"
)

// ScaleMode 缩放模式
type ScaleMode string

const (
	// ModeAssets 以基准尺寸生成 1x/2x/3x 资源
	ModeAssets ScaleMode = "assets"
	// ModeWidth 适配宽度
	ModeWidth ScaleMode = "width"
	// ModeBox 适配到宽高框内
	ModeBox ScaleMode = "box"
)

type modeInfo struct {
	label     string
	multiples []int
}

// scaleModes 模式查找表
var scaleModes = map[ScaleMode]modeInfo{
	ModeAssets: {label: "asset set (1x/2x/3x)", multiples: []int{1, 2, 3}},
	ModeWidth:  {label: "fit to width", multiples: []int{1}},
	ModeBox:    {label: "fit within box", multiples: []int{1}},
}

var modeAliases = map[string]ScaleMode{
	"asset":     ModeAssets,
	"assets":    ModeAssets,
	"width":     ModeWidth,
	"fit-width": ModeWidth,
	"box":       ModeBox,
	"fit-box":   ModeBox,
}

// ParseScaleMode 解析模式名称
func ParseScaleMode(name string) (ScaleMode, bool) {
	m, ok := modeAliases[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// Label 模式显示名称
func (m ScaleMode) Label() string {
	return scaleModes[m].label
}

// IsFit 是否为适配模式（单输出）
func (m ScaleMode) IsFit() bool {
	return m == ModeWidth || m == ModeBox
}

// Dimensions 像素尺寸
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Target 单个输出的目标几何
type Target struct {
	Mode ScaleMode
	// 资源集模式的边长
	Size int
	// 资源集倍数 1/2/3
	Scale int
	// 适配模式的最大宽高，0表示该轴不限制
	MaxWidth  int
	MaxHeight int
}

// Contains 判断尺寸是否已在目标范围内（用于不放大策略）
func (t Target) Contains(d Dimensions) bool {
	switch t.Mode {
	case ModeAssets:
		return d.Width <= t.Size && d.Height <= t.Size
	case ModeWidth:
		return d.Width <= t.MaxWidth
	case ModeBox:
		return (t.MaxWidth == 0 || d.Width <= t.MaxWidth) &&
			(t.MaxHeight == 0 || d.Height <= t.MaxHeight)
	}
	return false
}

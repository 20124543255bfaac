package ui

import (
	"os"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// RenderConfig 终端渲染设置
type RenderConfig struct {
	Interactive bool
	Width       int
	NoColor     bool
}

// DetectRenderConfig 根据stdout是否为终端决定渲染方式
func DetectRenderConfig(noColor bool) RenderConfig {
	cfg := RenderConfig{Width: 80, NoColor: noColor}
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) && os.Getenv("CI") == "" {
		cfg.Interactive = true
		if width, _, err := term.GetSize(fd); err == nil && width > 0 {
			cfg.Width = width
		}
	}
	if !cfg.Interactive || os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
	return cfg
}

// Apply 设置全局颜色开关
func (c RenderConfig) Apply() {
	color.NoColor = c.NoColor
	if c.NoColor {
		pterm.DisableColor()
	} else {
		pterm.EnableColor()
	}
}

// IsStdinTerminal 是否可以交互提问
func IsStdinTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"sizely/core/converter"

	"github.com/pterm/pterm"
)

// Progress 批处理进度显示。终端上使用pterm进度条，否则逐行输出日志。
type Progress struct {
	out         io.Writer
	interactive bool
	bar         *pterm.ProgressbarPrinter
}

// NewProgress 创建进度显示
func NewProgress(out io.Writer, total int, cfg RenderConfig) *Progress {
	p := &Progress{out: out, interactive: cfg.Interactive && total > 0}
	if !p.interactive {
		return p
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Resizing").
		WithWriter(out).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		p.interactive = false
		return p
	}
	bar.BarStyle = &pterm.Style{pterm.FgLightBlue, pterm.BgDefault}
	bar.TitleStyle = &pterm.Style{pterm.FgLightCyan, pterm.Bold}
	bar.BarCharacter = "█"
	bar.LastCharacter = "█"
	bar.ElapsedTimeRoundingFactor = time.Second
	bar.ShowCount = true
	bar.ShowElapsedTime = true
	p.bar = bar
	return p
}

// Update 渲染一个进度事件
func (p *Progress) Update(ev converter.ProgressEvent) {
	if !p.interactive {
		for _, line := range ev.Lines {
			fmt.Fprintln(p.out, line)
		}
		return
	}

	for _, line := range ev.Lines {
		pterm.Fprintln(p.out, colorLine(line))
	}
	p.bar.UpdateTitle(fmt.Sprintf("Resizing %s", filepath.Base(ev.Input)))
	p.bar.Increment()
}

// Finish 停止进度条
func (p *Progress) Finish() {
	if p.bar != nil {
		p.bar.Stop()
		p.bar = nil
	}
}

package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"sizely/core/converter"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow, color.Bold)
	mutedColor   = color.New(color.Faint)
)

// colorLine 按日志行前缀着色
func colorLine(line string) string {
	switch {
	case strings.HasPrefix(line, "✓"):
		return successColor.Sprint(line)
	case strings.HasPrefix(line, "✗"):
		return errorColor.Sprint(line)
	case line == "Cancelled.":
		return warnColor.Sprint(line)
	}
	return line
}

// Info 提示信息
func Info(format string, args ...interface{}) {
	pterm.Info.Printfln(format, args...)
}

// Success 成功信息
func Success(format string, args ...interface{}) {
	pterm.Success.Printfln(format, args...)
}

// Warning 警告信息
func Warning(format string, args ...interface{}) {
	pterm.Warning.Printfln(format, args...)
}

// Error 错误信息
func Error(format string, args ...interface{}) {
	pterm.Error.Printfln(format, args...)
}

// PrintSummary 打印运行尾部（取消标记和汇总行）
func PrintSummary(out io.Writer, result *converter.BatchResult) {
	if result.Cancelled {
		fmt.Fprintln(out, colorLine("Cancelled."))
	}
	summary := result.Summary()
	switch {
	case result.Errors > 0:
		fmt.Fprintln(out, warnColor.Sprint(summary))
	case len(result.Produced) > 0:
		fmt.Fprintln(out, successColor.Sprint(summary))
	default:
		fmt.Fprintln(out, summary)
	}
	fmt.Fprintln(out, mutedColor.Sprintf("job %s, %s", result.JobID, result.Duration().Round(time.Millisecond)))
}

// PrintTable 打印带表头的表格
func PrintTable(out io.Writer, header []string, rows [][]string) error {
	data := pterm.TableData{header}
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithWriter(out).WithData(data).Render()
}

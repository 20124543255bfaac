package converter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType 定义错误类型
type ErrorType string

const (
	// 用户输入校验错误，运行不会开始
	ErrorTypeValidation ErrorType = "VALIDATION"
	// 外部工具执行错误，只影响当前输出
	ErrorTypeToolExecution ErrorType = "TOOL_EXECUTION"
	// 文件系统错误，跳过当前输入
	ErrorTypeFileOperation ErrorType = "FILE_OPERATION"
)

// SizelyError 带分类信息的错误
type SizelyError struct {
	Type      ErrorType
	Operation string
	FilePath  string
	Message   string
	Cause     error
}

// Error 实现error接口
func (se *SizelyError) Error() string {
	var builder strings.Builder
	if se.Operation != "" {
		builder.WriteString(se.Operation)
		builder.WriteString(": ")
	}
	builder.WriteString(se.Message)
	return builder.String()
}

// Unwrap 支持错误链
func (se *SizelyError) Unwrap() error {
	return se.Cause
}

// NewToolError 根据工具输出创建执行错误，诊断文本原样保留
func NewToolError(operation string, result *ToolResult, cause error) *SizelyError {
	message := ""
	if result != nil {
		message = strings.TrimSpace(result.Stderr)
		if message == "" {
			message = strings.TrimSpace(result.Stdout)
		}
	}
	if message == "" && cause != nil {
		message = cause.Error()
	}
	if message == "" {
		message = "unknown failure"
	}
	return &SizelyError{
		Type:      ErrorTypeToolExecution,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// NewFileError 创建文件系统错误
func NewFileError(operation, path string, cause error) *SizelyError {
	return &SizelyError{
		Type:      ErrorTypeFileOperation,
		Operation: operation,
		FilePath:  path,
		Message:   fmt.Sprintf("%s: %v", path, cause),
		Cause:     cause,
	}
}

// IsErrorType 判断错误链中是否包含指定类型
func IsErrorType(err error, errorType ErrorType) bool {
	var se *SizelyError
	if errors.As(err, &se) {
		return se.Type == errorType
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return errorType == ErrorTypeValidation
	}
	return false
}

// ValidationError 用户设置校验错误
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	var builder strings.Builder
	builder.WriteString(e.Field)
	builder.WriteString(": ")
	builder.WriteString(e.Message)
	if e.Value != nil && fmt.Sprint(e.Value) != "" {
		builder.WriteString(" (got ")
		builder.WriteString(fmt.Sprintf("%q", fmt.Sprint(e.Value)))
		builder.WriteString(")")
	}
	return builder.String()
}

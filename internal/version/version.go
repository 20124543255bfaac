package version

import "runtime"

// Version 信息统一管理，项目中唯一的版本号定义
const (
	// Version 完整版本号（不带v前缀）
	Version = "0.4.0"
	// VersionWithPrefix 带v前缀的版本号
	VersionWithPrefix = "v0.4.0"
)

// BuildInfo 构建信息，通过ldflags设置
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// GetVersion 获取版本号（不带前缀）
func GetVersion() string {
	return Version
}

// GetVersionWithPrefix 获取带前缀的版本号
func GetVersionWithPrefix() string {
	return VersionWithPrefix
}

// GetFullVersionInfo 获取完整版本信息
func GetFullVersionInfo() string {
	return VersionWithPrefix + " (built at " + BuildTime + ", commit " + GitCommit + ", " + runtime.Version() + " " + runtime.GOOS + "/" + runtime.GOARCH + ")"
}

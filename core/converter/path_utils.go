package converter

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// PathUtils 路径处理工具
type PathUtils struct{}

// GlobalPathUtils 全局路径工具实例
var GlobalPathUtils = &PathUtils{}

// NormalizePath 路径规范化：展开~、转绝对路径、修复编码
func (pu *PathUtils) NormalizePath(input string) (string, error) {
	decodedPath := input
	// 只对 file:// 形式的路径做URL解码，普通文件名里的%保持原样
	if strings.HasPrefix(input, "file://") {
		if u, err := url.Parse(input); err == nil && utf8.ValidString(u.Path) {
			decodedPath = u.Path
		}
	}

	if decodedPath == "~" || strings.HasPrefix(decodedPath, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		decodedPath = filepath.Join(homeDir, decodedPath[1:])
	}

	absPath, err := filepath.Abs(decodedPath)
	if err != nil {
		return "", err
	}

	if !utf8.ValidString(absPath) {
		absPath = pu.detectAndFixEncoding(absPath)
	}

	return absPath, nil
}

// detectAndFixEncoding 尝试把非UTF-8路径按GBK系列编码解码
func (pu *PathUtils) detectAndFixEncoding(path string) string {
	if utf8.ValidString(path) {
		return path
	}

	encodings := []transform.Transformer{
		simplifiedchinese.GBK.NewDecoder(),
		simplifiedchinese.GB18030.NewDecoder(),
	}

	for _, decoder := range encodings {
		reader := transform.NewReader(strings.NewReader(path), decoder)
		decoded, err := io.ReadAll(reader)
		if err != nil {
			continue
		}
		decodedStr := string(decoded)
		if utf8.ValidString(decodedStr) && len(strings.TrimSpace(decodedStr)) > 0 {
			return decodedStr
		}
	}

	return path
}

// ValidatePath 验证路径是否有效
func (pu *PathUtils) ValidatePath(path string) bool {
	if path == "" || path == "." {
		return false
	}
	for _, char := range []string{"\x00", "\n", "\r"} {
		if strings.Contains(path, char) {
			return false
		}
	}
	return true
}

// OutputLayout 决定输出目录和文件名
type OutputLayout struct {
	AssetsFolder  string
	ResizedFolder string
}

// Subfolder 模式对应的固定子目录名
func (l OutputLayout) Subfolder(mode ScaleMode) string {
	if mode == ModeAssets {
		return l.AssetsFolder
	}
	return l.ResizedFolder
}

// Dir 计算某个输入的输出目录
func (l OutputLayout) Dir(input string, s *Settings) string {
	switch s.Destination {
	case DestInPlace:
		return filepath.Dir(input)
	case DestFolder:
		return filepath.Join(s.CustomDir, l.Subfolder(s.Mode))
	default:
		return filepath.Join(filepath.Dir(input), l.Subfolder(s.Mode))
	}
}

// FileName 计算某个目标的输出文件名
func (l OutputLayout) FileName(input string, t Target, s *Settings) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + nameSuffix(t, s) + "." + s.Format.Extension
}

// nameSuffix 资源集: _B, @2x, @3x；适配模式: _wW, _hH, _WxH
func nameSuffix(t Target, s *Settings) string {
	switch t.Mode {
	case ModeAssets:
		if t.Scale <= 1 {
			return "_" + strconv.Itoa(t.Size)
		}
		return "@" + strconv.Itoa(t.Scale) + "x"
	}

	if s.KeepFilename {
		return ""
	}
	switch {
	case t.MaxWidth > 0 && t.MaxHeight > 0:
		return "_" + strconv.Itoa(t.MaxWidth) + "x" + strconv.Itoa(t.MaxHeight)
	case t.MaxHeight > 0:
		return "_h" + strconv.Itoa(t.MaxHeight)
	default:
		return "_w" + strconv.Itoa(t.MaxWidth)
	}
}

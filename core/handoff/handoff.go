// Package handoff 解码文件管理器扩展传来的 sizely:// 链接
package handoff

import (
	"encoding/base64"
	"net/url"
	"strings"
)

const (
	// Scheme 链接协议
	Scheme = "sizely"
	// Host 打开文件的动作
	Host = "open"
	// Param 载荷参数名
	Param = "files"
)

// Encode 路径以换行连接后做URL安全的base64编码
func Encode(paths []string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(strings.Join(paths, "\n")))
	return Scheme + "://" + Host + "?" + Param + "=" + payload
}

// Decode 解析链接中的路径列表。格式错误时返回false，调用方直接忽略。
func Decode(raw string) ([]string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !strings.EqualFold(u.Scheme, Scheme) || !strings.EqualFold(u.Host, Host) {
		return nil, false
	}

	payload := rawParam(u.RawQuery, Param)
	if payload == "" {
		return nil, false
	}

	data, ok := decodeBase64(payload)
	if !ok {
		return nil, false
	}

	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			paths = append(paths, line)
		}
	}
	if len(paths) == 0 {
		return nil, false
	}
	return paths, true
}

// rawParam 取参数原值。不做表单解码，标准字母表中的+不会变成空格。
func rawParam(query, name string) string {
	for _, pair := range strings.Split(query, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err != nil || k != name {
			continue
		}
		if v, err := url.PathUnescape(value); err == nil {
			return v
		}
		return ""
	}
	return ""
}

// decodeBase64 接受URL安全和标准字母表，有无填充均可
func decodeBase64(s string) ([]byte, bool) {
	for _, enc := range []*base64.Encoding{
		base64.RawURLEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.StdEncoding,
	} {
		if data, err := enc.DecodeString(s); err == nil {
			return data, true
		}
	}
	return nil, false
}

package converter

import "strings"

// OutputFormat 输出格式：工具标识、扩展名、是否支持质量参数
type OutputFormat struct {
	Name            string
	ToolID          string
	Extension       string
	SupportsQuality bool
}

// outputFormats 格式查找表
var outputFormats = []OutputFormat{
	{Name: "jpeg", ToolID: "jpeg", Extension: "jpg", SupportsQuality: true},
	{Name: "png", ToolID: "png", Extension: "png"},
	{Name: "heic", ToolID: "heic", Extension: "heic", SupportsQuality: true},
	{Name: "tiff", ToolID: "tiff", Extension: "tiff"},
	{Name: "gif", ToolID: "gif", Extension: "gif"},
	{Name: "bmp", ToolID: "bmp", Extension: "bmp"},
}

var formatAliases = map[string]string{
	"jpg": "jpeg",
	"tif": "tiff",
}

// LookupFormat 根据名称或别名查找输出格式
func LookupFormat(name string) (OutputFormat, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := formatAliases[name]; ok {
		name = alias
	}
	for _, f := range outputFormats {
		if f.Name == name {
			return f, true
		}
	}
	return OutputFormat{}, false
}

// FormatNames 返回所有格式名称
func FormatNames() []string {
	names := make([]string, 0, len(outputFormats))
	for _, f := range outputFormats {
		names = append(names, f.Name)
	}
	return names
}

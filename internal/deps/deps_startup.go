package deps

import (
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// LowSpace 可用空间不足的目录
type LowSpace struct {
	Dir    string
	FreeMB uint64
}

// CheckOutputSpace 批处理开始前检查各输出目录所在磁盘的空间。
// 只返回警告，不阻止运行；目录不存在时检查最近的已存在上级目录。
func CheckOutputSpace(dirs []string, minFreeMB int, logger *zap.Logger) []LowSpace {
	if minFreeMB <= 0 {
		return nil
	}

	checked := make(map[string]bool)
	var low []LowSpace
	for _, dir := range dirs {
		existing := nearestExisting(dir)
		if checked[existing] {
			continue
		}
		checked[existing] = true

		free, err := FreeSpaceMB(existing)
		if err != nil {
			logger.Debug("磁盘空间检查失败", zap.String("dir", existing), zap.Error(err))
			continue
		}
		if free < uint64(minFreeMB) {
			logger.Warn("磁盘空间不足", zap.String("dir", existing), zap.Uint64("free_mb", free))
			low = append(low, LowSpace{Dir: existing, FreeMB: free})
		}
	}

	sort.Slice(low, func(i, j int) bool { return low[i].Dir < low[j].Dir })
	return low
}

func nearestExisting(dir string) string {
	for {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

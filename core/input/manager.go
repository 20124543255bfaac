// Package input 管理待处理的输入文件集合
package input

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"sizely/core/converter"

	"go.uber.org/zap"
)

// Set 有序、去重的待处理文件集合
type Set struct {
	mu         sync.RWMutex
	items      []string
	seen       map[string]struct{}
	extensions map[string]bool
	logger     *zap.Logger
}

// NewSet 创建集合，extensions 为支持的图片扩展名（带点，小写）
func NewSet(extensions []string, logger *zap.Logger) *Set {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Set{
		seen:       make(map[string]struct{}),
		extensions: exts,
		logger:     logger,
	}
}

// Add 加入文件或目录（目录只展开一层），返回新增数量
func (s *Set) Add(paths ...string) int {
	added := 0
	for _, raw := range paths {
		if !converter.GlobalPathUtils.ValidatePath(raw) {
			s.logger.Debug("忽略无效路径", zap.String("path", raw))
			continue
		}
		path, err := converter.GlobalPathUtils.NormalizePath(raw)
		if err != nil {
			s.logger.Debug("路径规范化失败", zap.String("path", raw), zap.Error(err))
			continue
		}

		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			added += s.addDir(path)
			continue
		}
		if !s.supported(path) {
			s.logger.Debug("不支持的文件类型", zap.String("path", path))
			continue
		}
		if s.insert(path) {
			added++
		}
	}
	return added
}

func (s *Set) addDir(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn("读取目录失败", zap.String("dir", dir), zap.Error(err))
		return 0
	}
	added := 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if s.supported(path) && s.insert(path) {
			added++
		}
	}
	return added
}

func (s *Set) supported(path string) bool {
	if len(s.extensions) == 0 {
		return true
	}
	return s.extensions[strings.ToLower(filepath.Ext(path))]
}

func (s *Set) insert(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[path]; ok {
		return false
	}
	s.seen[path] = struct{}{}
	s.items = append(s.items, path)
	return true
}

// Items 按加入顺序返回副本
func (s *Set) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.items...)
}

// Len 文件数量
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// ExtractMarked 从启动参数中取出标记后的路径，返回路径和剩余参数。
// 标记后的参数直到下一个以-开头的参数为止；也支持 --files=a.png 形式。
func ExtractMarked(args []string, marker string) (paths, rest []string) {
	inMarked := false
	for _, arg := range args {
		switch {
		case arg == marker:
			inMarked = true
		case strings.HasPrefix(arg, marker+"="):
			inMarked = false
			if v := strings.TrimPrefix(arg, marker+"="); v != "" {
				paths = append(paths, v)
			}
		case inMarked && !strings.HasPrefix(arg, "-"):
			paths = append(paths, arg)
		default:
			inMarked = false
			rest = append(rest, arg)
		}
	}
	return paths, rest
}

// Package preset 管理资源集模式的命名基准尺寸
package preset

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Preset 命名的基准尺寸
type Preset struct {
	Label string `json:"label"`
	Size  int    `json:"size"`
}

// Validate 检查预设是否有效
func (p Preset) Validate() error {
	if strings.TrimSpace(p.Label) == "" {
		return errors.New("preset label must not be empty")
	}
	if p.Size <= 0 {
		return fmt.Errorf("preset %q: size must be a positive integer", p.Label)
	}
	return nil
}

// Store 预设列表的持久化接口
type Store interface {
	// LoadPresets 返回保存的列表，found为false表示从未保存过
	LoadPresets() (presets []Preset, found bool, err error)
	SavePresets(presets []Preset) error
	// ClearPresets 删除保存的列表
	ClearPresets() error
}

// Defaults 内置默认预设
func Defaults() []Preset {
	return []Preset{
		{Label: "Toolbar icon", Size: 22},
		{Label: "Navigation bar icon", Size: 24},
		{Label: "Tab bar icon", Size: 25},
		{Label: "Settings icon", Size: 29},
		{Label: "Spotlight icon", Size: 40},
		{Label: "App icon", Size: 60},
	}
}

// Book 预设列表，每次修改都写回Store
type Book struct {
	store Store
	mu    sync.RWMutex
	items []Preset
}

// ErrIndexOutOfRange 索引越界
var ErrIndexOutOfRange = errors.New("preset index out of range")

// NewBook 从Store加载预设；没有保存过的列表时使用默认值
func NewBook(store Store) (*Book, error) {
	items, found, err := store.LoadPresets()
	if err != nil {
		return nil, fmt.Errorf("failed to load presets: %w", err)
	}
	if !found {
		items = Defaults()
	}
	return &Book{store: store, items: items}, nil
}

// List 返回预设副本
func (b *Book) List() []Preset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Preset(nil), b.items...)
}

// Get 按索引获取预设
func (b *Book) Get(i int) (Preset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= len(b.items) {
		return Preset{}, ErrIndexOutOfRange
	}
	return b.items[i], nil
}

// Add 追加预设
func (b *Book) Add(label string, size int) error {
	p := Preset{Label: strings.TrimSpace(label), Size: size}
	if err := p.Validate(); err != nil {
		return err
	}
	return b.mutate(func(items []Preset) ([]Preset, error) {
		return append(items, p), nil
	})
}

// Remove 删除指定索引的预设
func (b *Book) Remove(i int) error {
	return b.mutate(func(items []Preset) ([]Preset, error) {
		if i < 0 || i >= len(items) {
			return nil, ErrIndexOutOfRange
		}
		return append(items[:i], items[i+1:]...), nil
	})
}

// Move 把from位置的预设移动到to位置
func (b *Book) Move(from, to int) error {
	return b.mutate(func(items []Preset) ([]Preset, error) {
		if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
			return nil, ErrIndexOutOfRange
		}
		p := items[from]
		items = append(items[:from], items[from+1:]...)
		items = append(items[:to], append([]Preset{p}, items[to:]...)...)
		return items, nil
	})
}

// Reset 删除保存的列表，之后一直使用内置预设
func (b *Book) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.store.ClearPresets(); err != nil {
		return fmt.Errorf("failed to clear presets: %w", err)
	}
	b.items = Defaults()
	return nil
}

// IndexAfterRemove 删除removed之后index的新位置。index本身被删除时返回-1。
func IndexAfterRemove(index, removed int) int {
	switch {
	case index == removed:
		return -1
	case index > removed:
		return index - 1
	}
	return index
}

// IndexAfterMove 把from移动到to之后index的新位置
func IndexAfterMove(index, from, to int) int {
	switch {
	case index == from:
		return to
	case from < index && index <= to:
		return index - 1
	case to <= index && index < from:
		return index + 1
	}
	return index
}

// mutate 在副本上修改，保存成功后才替换内存状态
func (b *Book) mutate(fn func([]Preset) ([]Preset, error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, err := fn(append([]Preset(nil), b.items...))
	if err != nil {
		return err
	}
	if err := b.store.SavePresets(next); err != nil {
		return fmt.Errorf("failed to save presets: %w", err)
	}
	b.items = next
	return nil
}

package state

import (
	"fmt"
	"strconv"

	"go.etcd.io/bbolt"
)

// Preferences 上次使用的设置，按扁平键值保存
type Preferences struct {
	Mode           string
	PresetIndex    int
	CustomBase     string
	Width          string
	Height         string
	Format         string
	Quality        int
	NeverUpscale   bool
	PreserveAspect bool
	KeepFilename   bool
	StripMetadata  bool
	Destination    string
	CustomDir      string
}

// DefaultPreferences 首次运行的设置
func DefaultPreferences() Preferences {
	return Preferences{
		Mode:           "assets",
		PresetIndex:    0,
		Format:         "png",
		Quality:        85,
		NeverUpscale:   true,
		PreserveAspect: true,
		Destination:    "sibling",
	}
}

func (p Preferences) toMap() map[string]string {
	return map[string]string{
		"mode":            p.Mode,
		"preset_index":    strconv.Itoa(p.PresetIndex),
		"custom_base":     p.CustomBase,
		"width":           p.Width,
		"height":          p.Height,
		"format":          p.Format,
		"quality":         strconv.Itoa(p.Quality),
		"never_upscale":   strconv.FormatBool(p.NeverUpscale),
		"preserve_aspect": strconv.FormatBool(p.PreserveAspect),
		"keep_filename":   strconv.FormatBool(p.KeepFilename),
		"strip_metadata":  strconv.FormatBool(p.StripMetadata),
		"destination":     p.Destination,
		"custom_dir":      p.CustomDir,
	}
}

// applyValue 解析失败的值保持默认
func (p *Preferences) applyValue(key, value string) {
	switch key {
	case "mode":
		p.Mode = value
	case "preset_index":
		if n, err := strconv.Atoi(value); err == nil {
			p.PresetIndex = n
		}
	case "custom_base":
		p.CustomBase = value
	case "width":
		p.Width = value
	case "height":
		p.Height = value
	case "format":
		p.Format = value
	case "quality":
		if n, err := strconv.Atoi(value); err == nil {
			p.Quality = n
		}
	case "never_upscale":
		p.NeverUpscale = parseBool(value, p.NeverUpscale)
	case "preserve_aspect":
		p.PreserveAspect = parseBool(value, p.PreserveAspect)
	case "keep_filename":
		p.KeepFilename = parseBool(value, p.KeepFilename)
	case "strip_metadata":
		p.StripMetadata = parseBool(value, p.StripMetadata)
	case "destination":
		p.Destination = value
	case "custom_dir":
		p.CustomDir = value
	}
}

func parseBool(value string, fallback bool) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

// LoadPreferences 读取偏好，缺失的键使用默认值
func (m *Manager) LoadPreferences() (Preferences, error) {
	prefs := DefaultPreferences()

	m.mu.RLock()
	defer m.mu.RUnlock()

	err := m.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))
		if bucket == nil {
			return fmt.Errorf("preferences bucket not found")
		}
		return bucket.ForEach(func(k, v []byte) error {
			prefs.applyValue(string(k), string(v))
			return nil
		})
	})
	return prefs, err
}

// SavePreferences 写入全部偏好键
func (m *Manager) SavePreferences(prefs Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))
		if bucket == nil {
			return fmt.Errorf("preferences bucket not found")
		}
		for k, v := range prefs.toMap() {
			if err := bucket.Put([]byte(k), []byte(v)); err != nil {
				return fmt.Errorf("failed to save preference %s: %w", k, err)
			}
		}
		return nil
	})
}

// ResetPreferences 清空偏好
func (m *Manager) ResetPreferences() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(preferencesBucket)); err != nil {
			return fmt.Errorf("failed to delete preferences bucket: %w", err)
		}
		if _, err := tx.CreateBucket([]byte(preferencesBucket)); err != nil {
			return fmt.Errorf("failed to recreate preferences bucket: %w", err)
		}
		return nil
	})
}

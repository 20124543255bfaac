package state

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sizely/core/preset"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// Manager bbolt状态管理器：偏好设置、预设列表、运行历史
type Manager struct {
	db           *bbolt.DB
	dbPath       string
	historyLimit int
	mu           sync.RWMutex
	logger       *zap.Logger
}

// 数据库桶名称
const (
	preferencesBucket = "preferences"
	presetsBucket     = "presets"
	runsBucket        = "runs"
)

const presetsKey = "list"

// 超过该大小的运行日志压缩存储
const compressThreshold = 1024

// NewManager 打开（必要时创建）状态数据库
func NewManager(dbPath string, historyLimit int, logger *zap.Logger) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if historyLimit <= 0 {
		historyLimit = 50
	}
	manager := &Manager{
		db:           db,
		dbPath:       dbPath,
		historyLimit: historyLimit,
		logger:       logger,
	}

	if err := manager.initBuckets(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize buckets: %w, and failed to close db: %v", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return manager, nil
}

// initBuckets 初始化数据库桶
func (m *Manager) initBuckets() error {
	return m.db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range []string{preferencesBucket, presetsBucket, runsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}

// Path 数据库文件路径
func (m *Manager) Path() string {
	return m.dbPath
}

// Close 关闭数据库
func (m *Manager) Close() error {
	return m.db.Close()
}

// LoadPresets 实现 preset.Store
func (m *Manager) LoadPresets() ([]preset.Preset, bool, error) {
	var presets []preset.Preset
	found := false

	err := m.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(presetsBucket))
		if bucket == nil {
			return fmt.Errorf("presets bucket not found")
		}
		data := bucket.Get([]byte(presetsKey))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &presets)
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to load presets: %w", err)
	}
	return presets, found, nil
}

// SavePresets 实现 preset.Store，保存为有序JSON列表
func (m *Manager) SavePresets(presets []preset.Preset) error {
	if presets == nil {
		presets = []preset.Preset{}
	}
	data, err := json.Marshal(presets)
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}

	return m.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(presetsBucket))
		if bucket == nil {
			return fmt.Errorf("presets bucket not found")
		}
		return bucket.Put([]byte(presetsKey), data)
	})
}

// ClearPresets 删除保存的列表，下次加载回到内置预设
func (m *Manager) ClearPresets() error {
	return m.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(presetsBucket))
		if bucket == nil {
			return fmt.Errorf("presets bucket not found")
		}
		return bucket.Delete([]byte(presetsKey))
	})
}

// Stats 各桶的键数量
type Stats struct {
	Buckets map[string]int `json:"buckets"`
	Size    int64          `json:"size"`
}

// GetStats 获取数据库统计
func (m *Manager) GetStats() (*Stats, error) {
	stats := &Stats{Buckets: make(map[string]int)}
	err := m.db.View(func(tx *bbolt.Tx) error {
		stats.Size = tx.Size()
		return tx.ForEach(func(name []byte, b *bbolt.Bucket) error {
			stats.Buckets[string(name)] = b.Stats().KeyN
			return nil
		})
	})
	return stats, err
}

func (m *Manager) compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Manager) decompressData(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil && m.logger != nil {
			m.logger.Warn("Failed to close gzip reader", zap.Error(err))
		}
	}()

	return io.ReadAll(reader)
}

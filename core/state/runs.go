package state

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// RunRecord 一次批处理的历史记录
type RunRecord struct {
	ID        string    `json:"id"`
	Started   time.Time `json:"started"`
	Finished  time.Time `json:"finished"`
	Mode      string    `json:"mode"`
	Format    string    `json:"format"`
	Inputs    int       `json:"inputs"`
	Produced  int       `json:"produced"`
	Errors    int       `json:"errors"`
	Cancelled bool      `json:"cancelled"`
	Log       string    `json:"log,omitempty"`
}

// 压缩记录的标记前缀
const compressedPrefix = "gz:"

// SaveRun 保存运行记录，超出上限时删除最早的记录
func (m *Manager) SaveRun(record RunRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	if len(data) > compressThreshold {
		if compressed, cerr := m.compressData(data); cerr == nil && len(compressed) < len(data) {
			data = append([]byte(compressedPrefix), compressed...)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(runsBucket))
		if bucket == nil {
			return fmt.Errorf("runs bucket not found")
		}
		if err := bucket.Put([]byte(record.ID), data); err != nil {
			return err
		}
		return m.pruneRuns(bucket)
	})
}

// ListRuns 按开始时间从新到旧返回记录
func (m *Manager) ListRuns() ([]RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var runs []RunRecord
	err := m.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(runsBucket))
		if bucket == nil {
			return fmt.Errorf("runs bucket not found")
		}
		return bucket.ForEach(func(k, v []byte) error {
			record, err := m.decodeRun(v)
			if err != nil {
				m.logger.Warn("跳过损坏的运行记录", zap.String("id", string(k)), zap.Error(err))
				return nil
			}
			runs = append(runs, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Started.After(runs[j].Started)
	})
	return runs, nil
}

// GetRun 按ID读取记录
func (m *Manager) GetRun(id string) (RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var record RunRecord
	err := m.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(runsBucket))
		if bucket == nil {
			return fmt.Errorf("runs bucket not found")
		}
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("run not found: %s", id)
		}
		var err error
		record, err = m.decodeRun(data)
		return err
	})
	return record, err
}

func (m *Manager) decodeRun(data []byte) (RunRecord, error) {
	var record RunRecord
	if len(data) > len(compressedPrefix) && string(data[:len(compressedPrefix)]) == compressedPrefix {
		raw, err := m.decompressData(data[len(compressedPrefix):])
		if err != nil {
			return record, fmt.Errorf("failed to decompress run record: %w", err)
		}
		data = raw
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return record, fmt.Errorf("failed to unmarshal run record: %w", err)
	}
	return record, nil
}

// pruneRuns 在写事务内删除超出上限的旧记录
func (m *Manager) pruneRuns(bucket *bbolt.Bucket) error {
	type entry struct {
		key     string
		started time.Time
	}
	var entries []entry
	err := bucket.ForEach(func(k, v []byte) error {
		record, err := m.decodeRun(v)
		if err != nil {
			// 无法解析的记录视为最旧
			entries = append(entries, entry{key: string(k)})
			return nil
		}
		entries = append(entries, entry{key: string(k), started: record.Started})
		return nil
	})
	if err != nil {
		return err
	}
	if len(entries) <= m.historyLimit {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].started.Before(entries[j].started)
	})
	for _, e := range entries[:len(entries)-m.historyLimit] {
		if err := bucket.Delete([]byte(e.key)); err != nil {
			return err
		}
	}
	return nil
}

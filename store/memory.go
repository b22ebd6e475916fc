package store

import (
	"context"
	"sync"

	"github.com/CapYuno/Book-Share-App/core"
)

// MemoryStore 是内存实现的 SnapshotStore，用于测试/开发/原型。
// 进程重启后数据丢失，生产环境用 FileStore 或 RedisStore。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return value, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 拷贝一份，避免调用方后续修改切片污染存储
	buf := make([]byte, len(value))
	copy(buf, value)
	m.data[key] = buf
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// 确保 MemoryStore 实现了 core.SnapshotStore 接口
var _ core.SnapshotStore = (*MemoryStore)(nil)

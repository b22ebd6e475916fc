package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/CapYuno/Book-Share-App/core"
)

// FileStore 是文件实现的 SnapshotStore：每个 key 对应目录下一个文件。
// 单机部署的默认后端，进程重启后快照仍在，省掉一次冷启动拟合。
type FileStore struct {
	dir string
}

// NewFileStore 创建文件存储，目录不存在时自动建立。
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Name() string { return "file" }

func (f *FileStore) path(key string) string {
	// key 作为文件名使用，调用方保证不含路径分隔符
	return filepath.Join(f.dir, key)
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.ErrStoreNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set 先写临时文件再重命名，保证读者看不到写了一半的快照。
func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, key+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, f.path(key))
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (f *FileStore) Close() error { return nil }

// 确保 FileStore 实现了 core.SnapshotStore 接口
var _ core.SnapshotStore = (*FileStore)(nil)

// Package cache 负责已拟合索引的持久化与重建，避免每次进程启动都重新拟合。
//
// 职责边界：cache 只管"拟合 + 落盘 + 加载"，当前生效快照的原子替换
// 由 recommend.Service 持有的原子指针完成。
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/CapYuno/Book-Share-App/core"
	"github.com/CapYuno/Book-Share-App/index"
	"github.com/CapYuno/Book-Share-App/model"
)

// DefaultSnapshotKey 是快照在存储后端里的默认键名。
const DefaultSnapshotKey = "recommend_index.snapshot"

// Manager 管理快照的保存/加载/重建。
type Manager struct {
	store core.SnapshotStore
	key   string
	model model.Model
	log   zerolog.Logger
}

// NewManager 创建缓存管理器。key 为空时使用 DefaultSnapshotKey。
func NewManager(store core.SnapshotStore, key string, m model.Model, logger zerolog.Logger) *Manager {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &Manager{
		store: store,
		key:   key,
		model: m,
		log:   logger.With().Str("component", "cache").Logger(),
	}
}

// Load 尝试从存储加载快照。
//   - 键不存在：返回 (nil, nil)，调用方继续走重建
//   - 数据损坏或后端故障：返回 CACHE_PERSISTENCE，调用方记日志后重建
func (c *Manager) Load(ctx context.Context) (*index.FittedIndex, error) {
	data, err := c.store.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, core.ErrStoreNotFound) {
			return nil, nil
		}
		return nil, core.ErrCachePersistence(core.ModuleCache,
			fmt.Sprintf("load snapshot from %s: %v", c.store.Name(), err))
	}
	idx, err := index.DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	c.log.Info().
		Str("backend", c.store.Name()).
		Int("books", idx.Len()).
		Time("fitted_at", idx.FittedAt).
		Msg("loaded recommendation snapshot")
	return idx, nil
}

// Save 把快照写入存储。失败返回 CACHE_PERSISTENCE，永不致命。
func (c *Manager) Save(ctx context.Context, idx *index.FittedIndex) error {
	data, err := idx.EncodeSnapshot()
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, c.key, data); err != nil {
		return core.ErrCachePersistence(core.ModuleCache,
			fmt.Sprintf("save snapshot to %s: %v", c.store.Name(), err))
	}
	c.log.Info().
		Str("backend", c.store.Name()).
		Int("books", idx.Len()).
		Int("bytes", len(data)).
		Msg("saved recommendation snapshot")
	return nil
}

// Rebuild 用当前目录重新拟合并持久化。
//
// 语义约定：
//   - 拟合失败（含空目录）→ 返回错误，不落盘
//   - 拟合成功但落盘失败 → 只记日志，照样返回新快照；
//     推荐陈旧可以容忍，丢掉一次成功拟合不可以
func (c *Manager) Rebuild(ctx context.Context, books []*core.Book) (*index.FittedIndex, error) {
	idx, err := index.Fit(c.model, books)
	if err != nil {
		return nil, err
	}
	if err := c.Save(ctx, idx); err != nil {
		c.log.Warn().Err(err).Msg("snapshot save failed, continuing with in-memory index")
	}
	c.log.Info().
		Str("strategy", idx.Fitted.Strategy()).
		Int("books", idx.Len()).
		Msg("rebuilt recommendation index")
	return idx, nil
}

// Invalidate 删除持久化快照（目录清空等极端场景用）。
func (c *Manager) Invalidate(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.key); err != nil {
		return core.ErrCachePersistence(core.ModuleCache,
			fmt.Sprintf("delete snapshot from %s: %v", c.store.Name(), err))
	}
	return nil
}

// Package recommend 是推荐核心对 CRUD 协作层暴露的门面：
//
//	GetSimilar(bookID, k)          单书相似推荐
//	GetPersonalized(borrowerID, k) 借阅历史个性化推荐
//	InvalidateAndRebuild()         目录写入后的失效重建入口
//
// 错误口径：推荐查询永远不向调用方返回错误——任何查询期故障都降级为
// 空结果并记一条日志，"没有推荐"本身就是合法输出。
package recommend

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/CapYuno/Book-Share-App/cache"
	"github.com/CapYuno/Book-Share-App/core"
	"github.com/CapYuno/Book-Share-App/filter"
	"github.com/CapYuno/Book-Share-App/index"
	"github.com/CapYuno/Book-Share-App/recall"
)

// Params 汇总 Service 的全部依赖与参数。
type Params struct {
	Catalog core.CatalogStore
	Loans   core.LoanStore
	Cache   *cache.Manager
	Filters filter.Chain

	// TopKDefault 查询未指定 k 时的默认条数（默认 3）
	TopKDefault int
	// HistoryWindow 个性化考虑的历史条数（默认 5）
	HistoryWindow int
	// WideK 个性化聚合的扇出宽度（默认 10）
	WideK int

	Logger zerolog.Logger
}

// Service 持有进程内唯一的当前快照。
//
// 并发契约：快照指针用 atomic.Pointer 保存，读路径无锁取一致引用；
// 重建用互斥锁串行化（last-writer-wins），替换是一次原子指针交换，
// 并发读者要么看到全旧索引、要么看到全新索引，绝无半成品。
type Service struct {
	catalog core.CatalogStore
	history *recall.History
	cache   *cache.Manager
	filters filter.Chain

	topKDefault int
	log         zerolog.Logger

	mu        sync.Mutex // 串行化重建与首次加载
	cur       atomic.Pointer[index.FittedIndex]
	loadTried bool
}

// NewService 组装推荐门面。
func NewService(p Params) *Service {
	if p.TopKDefault <= 0 {
		p.TopKDefault = 3
	}
	return &Service{
		catalog: p.Catalog,
		history: &recall.History{
			Loans:  p.Loans,
			Window: p.HistoryWindow,
			WideK:  p.WideK,
		},
		cache:       p.Cache,
		filters:     p.Filters,
		topKDefault: p.TopKDefault,
		log:         p.Logger.With().Str("component", "recommend").Logger(),
	}
}

// GetSimilar 返回与 bookID 最相似的至多 k 本图书。
// bookID 未知、索引为空等一切查询期问题都降级为空结果。
func (s *Service) GetSimilar(ctx context.Context, bookID int64, k int) []core.Recommendation {
	if k <= 0 {
		k = s.topKDefault
	}
	idx := s.ensureIndex(ctx)
	if idx == nil {
		return []core.Recommendation{}
	}
	recs, err := idx.TopK(bookID, s.queryK(k))
	if err != nil {
		if core.IsItemNotFound(err) {
			s.log.Debug().Int64("book_id", bookID).Msg("book not in fitted corpus")
		} else {
			s.log.Warn().Err(err).Int64("book_id", bookID).Msg("similar query degraded to empty")
		}
		return []core.Recommendation{}
	}
	return s.applyFilters(ctx, recs, k)
}

// GetPersonalized 基于借阅历史返回至多 k 条个性化推荐。
// 没有已完成借阅的借阅者得到空结果，不是错误。
func (s *Service) GetPersonalized(ctx context.Context, borrowerID int64, k int) []core.Recommendation {
	if k <= 0 {
		k = s.topKDefault
	}
	idx := s.ensureIndex(ctx)
	if idx == nil {
		return []core.Recommendation{}
	}
	recs, err := s.history.ForBorrower(ctx, idx, borrowerID, s.queryK(k))
	if err != nil {
		s.log.Warn().Err(err).Int64("borrower_id", borrowerID).
			Msg("personalized query degraded to empty")
		return []core.Recommendation{}
	}
	if recs == nil {
		recs = []core.Recommendation{}
	}
	return s.applyFilters(ctx, recs, k)
}

// InvalidateAndRebuild 在任何目录写入（增/改/删图书）之后调用。
// 重建失败只记日志并保留旧索引（或清空），绝不回滚触发它的目录写入；
// 返回错误仅供调用方观测。
func (s *Service) InvalidateAndRebuild(ctx context.Context) (*index.FittedIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked(ctx)
}

// Warm 预热快照：启动时调用一次，先尝试加载持久化快照，
// 加载不到再同步重建，避免把冷启动成本留给第一个请求。
func (s *Service) Warm(ctx context.Context) {
	s.ensureIndex(ctx)
}

// Current 返回当前生效的快照（可能为 nil），观测用。
func (s *Service) Current() *index.FittedIndex {
	return s.cur.Load()
}

// ensureIndex 返回当前快照；进程启动后的首次查询先尝试加载持久化快照，
// 加载不到再同步重建（此路径允许阻塞请求，不是高 QPS 场景）。
func (s *Service) ensureIndex(ctx context.Context) *index.FittedIndex {
	if idx := s.cur.Load(); idx != nil {
		return idx
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.cur.Load(); idx != nil {
		return idx
	}
	if !s.loadTried {
		s.loadTried = true
		idx, err := s.cache.Load(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("snapshot load failed, falling back to rebuild")
		}
		if idx != nil {
			s.cur.Store(idx)
			return idx
		}
	}
	idx, _ := s.rebuildLocked(ctx)
	return idx
}

// rebuildLocked 拉取目录、重新拟合并原子替换快照。调用方必须持有 s.mu。
//
// 失败语义：
//   - 目录读取失败 / 拟合失败：保留旧快照（宁可陈旧，不可半空）
//   - 目录为空：换入 nil 快照并删除持久化快照，后续查询（含重启后）
//     返回空结果而不是陈旧推荐
func (s *Service) rebuildLocked(ctx context.Context) (*index.FittedIndex, error) {
	books, err := s.catalog.ListBooks(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("catalog listing failed, keeping previous index")
		return s.cur.Load(), err
	}
	idx, err := s.cache.Rebuild(ctx, books)
	if err != nil {
		if core.IsEmptyCatalog(err) {
			s.log.Warn().Msg("catalog is empty, clearing recommendation index")
			s.cur.Store(nil)
			// 持久化快照一并删除，否则重启后会从旧快照恢复已删图书的推荐
			if derr := s.cache.Invalidate(ctx); derr != nil {
				s.log.Warn().Err(derr).Msg("snapshot invalidation failed")
			}
			return nil, err
		}
		s.log.Error().Err(err).Msg("rebuild failed, keeping previous index")
		return s.cur.Load(), err
	}
	s.cur.Store(idx)
	return idx, nil
}

// filterOverfetch 是配置了过滤器时的候选放大倍数。
const filterOverfetch = 3

// queryK 返回底层查询应取的候选宽度：有过滤链时先取 filterOverfetch
// 倍的候选，出口过滤后再截断到 k，避免过滤把结果压到 k 以下。
func (s *Service) queryK(k int) int {
	if len(s.filters) == 0 {
		return k
	}
	return k * filterOverfetch
}

// applyFilters 对出口结果执行过滤链并截断到 k。规则求值故障放行候选
// 并记日志，图书档案读不到时同样放行（过滤器只做收紧，不做兜底校验）。
func (s *Service) applyFilters(ctx context.Context, recs []core.Recommendation, k int) []core.Recommendation {
	if len(s.filters) == 0 || len(recs) == 0 {
		return core.TruncateRecommendations(recs, k)
	}
	out := make([]core.Recommendation, 0, len(recs))
	for _, rec := range recs {
		book, err := s.catalog.GetBook(ctx, rec.BookID)
		if err != nil || book == nil {
			out = append(out, rec)
			continue
		}
		keep, err := s.filters.Keep(ctx, book, rec.Score)
		if err != nil {
			s.log.Warn().Err(err).Int64("book_id", rec.BookID).Msg("filter rule error, keeping candidate")
		}
		if keep {
			out = append(out, rec)
		}
	}
	return core.TruncateRecommendations(out, k)
}

// Package index 把已拟合的相似度模型与图书 ID 顺序绑定为不可变快照，
// 并在其上提供 TopK 查询与自我排除、平分决胜等索引层约束。
package index

import (
	"time"

	"github.com/CapYuno/Book-Share-App/core"
	"github.com/CapYuno/Book-Share-App/model"
)

// FittedIndex 是一次拟合的完整快照：
// ID 序列与模型内部下标对齐，拟合时间用于观测与陈旧度排查。
//
// 不可变约定：重建产出新快照并整体替换旧快照，任何字段拟合后不再修改，
// 并发读者要么看到全旧、要么看到全新，绝无半成品。
type FittedIndex struct {
	BookIDs  []int64
	Fitted   model.Fitted
	FittedAt time.Time

	pos map[int64]int // BookID -> 语料下标
}

// Fit 用给定策略拟合目录并产出快照。目录为空时透传 EMPTY_CATALOG。
func Fit(m model.Model, books []*core.Book) (*FittedIndex, error) {
	fitted, err := m.Fit(books)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	idx := &FittedIndex{
		BookIDs:  ids,
		Fitted:   fitted,
		FittedAt: time.Now().UTC(),
	}
	idx.buildPos()
	return idx, nil
}

func (x *FittedIndex) buildPos() {
	x.pos = make(map[int64]int, len(x.BookIDs))
	for i, id := range x.BookIDs {
		x.pos[id] = i
	}
}

// Len 返回快照内的图书数量。
func (x *FittedIndex) Len() int {
	return len(x.BookIDs)
}

// Contains 判断某本图书是否在拟合语料中。
func (x *FittedIndex) Contains(bookID int64) bool {
	_, ok := x.pos[bookID]
	return ok
}

// TopK 返回与 bookID 最相似的至多 k 本图书。
//
// 索引层约束（与底层模型无关，一律强制）：
//   - 查询图书绝不出现在自己的结果里
//   - 分数降序，平分按 ID 升序，然后截断到 k
//   - 候选不足 k 时返回全部，不补位也不报错
//
// bookID 不在语料中时返回 ITEM_NOT_FOUND，调用方降级为"暂无推荐"。
func (x *FittedIndex) TopK(bookID int64, k int) ([]core.Recommendation, error) {
	queryIdx, ok := x.pos[bookID]
	if !ok {
		return nil, core.ErrItemNotFound(core.ModuleIndex, bookID)
	}
	scores := x.Fitted.ScoreAll(queryIdx)
	recs := make([]core.Recommendation, 0, len(scores))
	for _, s := range scores {
		if s.Index < 0 || s.Index >= len(x.BookIDs) {
			continue
		}
		// 自我排除在索引层兜底，不信赖模型输出
		if s.Index == queryIdx || x.BookIDs[s.Index] == bookID {
			continue
		}
		recs = append(recs, core.Recommendation{BookID: x.BookIDs[s.Index], Score: s.Score})
	}
	core.SortRecommendations(recs)
	return core.TruncateRecommendations(recs, k), nil
}

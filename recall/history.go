// Package recall 提供基于借阅历史的个性化聚合召回。
package recall

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/CapYuno/Book-Share-App/core"
)

// TopKQuerier 是单书相似查询的最小能力面，index.FittedIndex 满足它。
type TopKQuerier interface {
	TopK(bookID int64, k int) ([]core.Recommendation, error)
}

// 默认参数：历史窗口 5 条，扇出宽度 10（比最终 k 宽，给聚合留余量）。
const (
	DefaultWindow = 5
	DefaultWideK  = 10
)

// History 是基于借阅历史的个性化召回源：
// 取借阅者最近 Window 条已归还借阅，逐本扇出 TopK(WideK) 相似查询，
// 再把多路结果聚合为一张榜单。
type History struct {
	Loans core.LoanStore

	// Window 参与聚合的已完成借阅条数（最近优先），默认 5
	Window int

	// WideK 每本历史书的扇出查询宽度，默认 10
	WideK int

	// MaxConcurrent 扇出并发上限（0 表示不限制）
	MaxConcurrent int
}

func (r *History) Name() string { return "recall.history" }

// ForBorrower 为借阅者生成至多 k 条个性化推荐。
//
// 软失败约定：没有已完成借阅时返回空结果和 nil 错误；
// 历史书已不在语料中（目录删除后）时该路扇出静默跳过。
//
// 聚合口径：同一候选被多本历史书推荐时，分数做逐对滑动平均
// new = (old + incoming) / 2。该口径对合并顺序敏感（靠后合并的
// 来源影响更大），为保持行为一致被原样保留，扇出虽并发执行，
// 合并严格按历史从新到旧的顺序进行。
func (r *History) ForBorrower(
	ctx context.Context,
	querier TopKQuerier,
	borrowerID int64,
	k int,
) ([]core.Recommendation, error) {
	if r.Loans == nil || querier == nil {
		return nil, nil
	}

	window := r.Window
	if window <= 0 {
		window = DefaultWindow
	}
	wideK := r.WideK
	if wideK <= 0 {
		wideK = DefaultWideK
	}

	loans, err := r.Loans.RecentReturned(ctx, borrowerID, window)
	if err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return nil, nil
	}

	// 扇出查询并发执行，但结果按历史位置存放，合并顺序不受并发影响
	perSource := make([][]core.Recommendation, len(loans))
	eg, egCtx := errgroup.WithContext(ctx)
	if r.MaxConcurrent > 0 {
		eg.SetLimit(r.MaxConcurrent)
	}
	for i, loan := range loans {
		i, loan := i, loan
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			recs, err := querier.TopK(loan.BookID, wideK)
			if err != nil {
				// 历史书不在语料中不算错误，该路为空
				if core.IsItemNotFound(err) {
					return nil
				}
				return err
			}
			perSource[i] = recs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 借阅者读过的书不再推荐
	seen := make(map[int64]struct{}, len(loans))
	for _, loan := range loans {
		seen[loan.BookID] = struct{}{}
	}

	// 按历史从新到旧逐路合并
	merged := make(map[int64]float64)
	for _, recs := range perSource {
		for _, rec := range recs {
			if _, own := seen[rec.BookID]; own {
				continue
			}
			if old, ok := merged[rec.BookID]; ok {
				merged[rec.BookID] = (old + rec.Score) / 2
			} else {
				merged[rec.BookID] = rec.Score
			}
		}
	}

	out := make([]core.Recommendation, 0, len(merged))
	for bookID, score := range merged {
		out = append(out, core.Recommendation{BookID: bookID, Score: score})
	}
	core.SortRecommendations(out)
	return core.TruncateRecommendations(out, k), nil
}

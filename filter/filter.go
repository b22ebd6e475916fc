// Package filter 提供推荐结果出口处的过滤器：
// 命中规则的候选在返回给调用方之前被移除（例如馆内参考书不外借、不推荐）。
package filter

import (
	"context"

	"github.com/CapYuno/Book-Share-App/core"
)

// Filter 是过滤器的抽象接口，用于判断一个候选是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断候选是否应该被过滤。
	// book 是候选图书的完整档案，score 是本次查询的相似度分数。
	ShouldFilter(ctx context.Context, book *core.Book, score float64) (bool, error)
}

// Chain 按顺序执行一组过滤器，任何一个命中即移除候选。
type Chain []Filter

// Keep 判断候选是否全部过滤器都放行。
// 单个过滤器求值出错时放行该候选（宁可多推荐，不因规则故障清空结果），
// 错误交由调用方记日志。
func (c Chain) Keep(ctx context.Context, book *core.Book, score float64) (bool, error) {
	for _, f := range c {
		drop, err := f.ShouldFilter(ctx, book, score)
		if err != nil {
			return true, err
		}
		if drop {
			return false, nil
		}
	}
	return true, nil
}

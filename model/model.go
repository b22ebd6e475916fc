// Package model 提供两种可互换的相似度策略：
//
//   - VectorModel：TF-IDF 向量空间 + 余弦相似度（统计口径）
//   - KeywordModel：类别/关键词/作者的离散重合打分（默认口径）
//
// 两种策略在接口层完全一致（Fit / ScoreAll），选择哪种只是运行时配置，
// 调用方无需感知差异。
package model

import (
	"fmt"

	"github.com/CapYuno/Book-Share-App/core"
)

// 策略名常量，配置文件里的 strategy 字段取值。
const (
	StrategyVector  = "vector"
	StrategyKeyword = "keyword"
)

// ItemScore 是 ScoreAll 的单条输出：语料内下标 + 相似度分数。
// 下标与拟合时传入的图书顺序对齐。
type ItemScore struct {
	Index int
	Score float64
}

// Fitted 是已拟合的模型快照：不可变，只支持打分。
// 新拟合产生新快照，旧快照被整体丢弃，绝不原地修改。
type Fitted interface {
	// Strategy 返回产出此快照的策略名
	Strategy() string

	// Len 返回拟合语料的图书数量
	Len() int

	// ScoreAll 返回 queryIdx 对语料内其余所有图书的相似度，
	// 不含 queryIdx 自身。queryIdx 越界时返回 nil。
	ScoreAll(queryIdx int) []ItemScore
}

// Model 是相似度策略的统一契约。
type Model interface {
	// Name 返回策略名
	Name() string

	// Fit 对整个目录拟合，产出不可变快照。
	// 目录为空时返回 EMPTY_CATALOG 错误，调用方应视为"暂无推荐"。
	Fit(books []*core.Book) (Fitted, error)
}

// Options 汇总两种策略可调的拟合参数。零值字段按默认值处理。
type Options struct {
	// MinDocFreq 词项进入词表所需的最小文档频次（向量模型，默认 2）
	MinDocFreq int

	// MaxVocabulary 词表容量上限（向量模型，默认 1000）
	MaxVocabulary int

	// NgramMin / NgramMax 是 n-gram 跨度（向量模型，默认 1..2）
	NgramMin int
	NgramMax int
}

func (o Options) withDefaults() Options {
	if o.MinDocFreq <= 0 {
		o.MinDocFreq = 2
	}
	if o.MaxVocabulary <= 0 {
		o.MaxVocabulary = 1000
	}
	if o.NgramMin <= 0 {
		o.NgramMin = 1
	}
	if o.NgramMax < o.NgramMin {
		o.NgramMax = 2
		if o.NgramMax < o.NgramMin {
			o.NgramMax = o.NgramMin
		}
	}
	return o
}

// New 按策略名构建模型。未知策略返回 INVALID_CONFIG（启动期致命）。
func New(strategy string, opts Options) (Model, error) {
	switch strategy {
	case StrategyVector:
		return NewVectorModel(opts), nil
	case StrategyKeyword, "":
		// 关键词模型是默认/兜底策略
		return NewKeywordModel(), nil
	default:
		return nil, core.ErrInvalidConfig(
			fmt.Sprintf("unknown similarity strategy %q (supported: vector, keyword)", strategy))
	}
}

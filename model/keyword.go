package model

import (
	"github.com/CapYuno/Book-Share-App/core"
	"github.com/CapYuno/Book-Share-App/feature"
)

// 关键词策略的打分权重。
const (
	genreMatchBonus  = 10.0 // 类别完全一致（忽略大小写）
	tokenOverlapUnit = 2.0  // 词元交集每命中一个
	authorMatchBonus = 5.0  // 作者完全一致（忽略大小写）

	// keywordCalibration 是固定的校准除数，不是真实概率上界。
	// 强匹配目录下归一化分数可以超过 1，调用方必须容忍；
	// 这是刻意保留的简化口径，不是契约违规。
	keywordCalibration = 20.0
)

// KeywordModel 是离散重合打分策略，也是默认/兜底策略。
// 不依赖语料统计，再小的目录都有信号，适合冷启动。
type KeywordModel struct{}

// NewKeywordModel 创建关键词模型。无拟合参数。
func NewKeywordModel() *KeywordModel {
	return &KeywordModel{}
}

func (m *KeywordModel) Name() string { return StrategyKeyword }

// Fit 抽取每本书的词元集/类别/作者，产出不可变快照。
func (m *KeywordModel) Fit(books []*core.Book) (Fitted, error) {
	if len(books) == 0 {
		return nil, core.ErrEmptyCatalog(core.ModuleModel)
	}
	fitted := &FittedKeyword{
		Tokens:  make([][]string, len(books)),
		Genres:  make([]string, len(books)),
		Authors: make([]string, len(books)),
	}
	for i, b := range books {
		rep := feature.Extract(b)
		fitted.Tokens[i] = rep.Tokens
		fitted.Genres[i] = rep.Genre
		fitted.Authors[i] = rep.Author
	}
	return fitted, nil
}

// FittedKeyword 是关键词策略的已拟合快照。三个切片均与拟合语料下标对齐；
// 字段导出以便 gob 快照往返。
type FittedKeyword struct {
	Tokens  [][]string // 每本书的去重词元集
	Genres  []string   // 折叠后的类别（空串表示缺失）
	Authors []string   // 折叠后的作者（空串表示缺失）
}

func (f *FittedKeyword) Strategy() string { return StrategyKeyword }

func (f *FittedKeyword) Len() int { return len(f.Tokens) }

// ScoreAll 返回 queryIdx 对其余所有图书的重合分。
// 原始分 = 类别一致 +10、词元交集 ×2、作者一致 +5，再除以固定校准常数 20。
// 缺失字段（空类别/空作者）不参与加分。
func (f *FittedKeyword) ScoreAll(queryIdx int) []ItemScore {
	if queryIdx < 0 || queryIdx >= len(f.Tokens) {
		return nil
	}
	queryTokens := make(map[string]struct{}, len(f.Tokens[queryIdx]))
	for _, tok := range f.Tokens[queryIdx] {
		queryTokens[tok] = struct{}{}
	}
	queryGenre := f.Genres[queryIdx]
	queryAuthor := f.Authors[queryIdx]

	out := make([]ItemScore, 0, len(f.Tokens)-1)
	for i := range f.Tokens {
		if i == queryIdx {
			continue
		}
		var raw float64
		if queryGenre != "" && f.Genres[i] == queryGenre {
			raw += genreMatchBonus
		}
		for _, tok := range f.Tokens[i] {
			if _, ok := queryTokens[tok]; ok {
				raw += tokenOverlapUnit
			}
		}
		if queryAuthor != "" && f.Authors[i] == queryAuthor {
			raw += authorMatchBonus
		}
		out = append(out, ItemScore{Index: i, Score: raw / keywordCalibration})
	}
	return out
}

var _ Model = (*KeywordModel)(nil)
var _ Fitted = (*FittedKeyword)(nil)

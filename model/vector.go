package model

import (
	"math"
	"sort"

	"github.com/CapYuno/Book-Share-App/core"
	"github.com/CapYuno/Book-Share-App/feature"
	"github.com/CapYuno/Book-Share-App/pkg/textutil"
)

// VectorModel 是 TF-IDF 向量空间策略。
//
// 拟合流程：加权特征文本 → 停用词过滤 + 重音剥离 → n-gram 展开 →
// 词表筛选（文档频次 >= MinDocFreq，容量 <= MaxVocabulary）→
// tf·idf 加权 → L2 行归一化。相似度取余弦，夹取到 [0,1]。
//
// 小目录下可能没有词项达到 MinDocFreq，此时所有向量为零向量，
// 任意两本书的相似度都是 0——这是"无信号"，不是错误。
type VectorModel struct {
	opts Options
}

// NewVectorModel 创建向量模型，零值选项按默认参数补齐。
func NewVectorModel(opts Options) *VectorModel {
	return &VectorModel{opts: opts.withDefaults()}
}

func (m *VectorModel) Name() string { return StrategyVector }

// Fit 对整个目录做一次 TF-IDF 拟合，产出不可变快照。
func (m *VectorModel) Fit(books []*core.Book) (Fitted, error) {
	if len(books) == 0 {
		return nil, core.ErrEmptyCatalog(core.ModuleModel)
	}

	// 1. 逐书词项化：停用词在 n-gram 展开之前剔除
	docs := make([][]string, len(books))
	for i, b := range books {
		tokens := textutil.TokenizeFiltered(feature.FeatureText(b))
		docs[i] = textutil.Ngrams(tokens, m.opts.NgramMin, m.opts.NgramMax)
	}

	// 2. 统计文档频次（词表筛选用）与语料频次（容量裁剪用）
	docFreq := make(map[string]int)
	corpusFreq := make(map[string]int)
	for _, terms := range docs {
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			corpusFreq[t]++
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				docFreq[t]++
			}
		}
	}

	// 3. 词表：df >= MinDocFreq；超容量时按语料频次降序保留头部，
	// 频次相同按字典序，保证构建结果确定可复现
	terms := make([]string, 0, len(docFreq))
	for t, n := range docFreq {
		if n >= m.opts.MinDocFreq {
			terms = append(terms, t)
		}
	}
	if len(terms) > m.opts.MaxVocabulary {
		sort.Slice(terms, func(i, j int) bool {
			if corpusFreq[terms[i]] != corpusFreq[terms[j]] {
				return corpusFreq[terms[i]] > corpusFreq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:m.opts.MaxVocabulary]
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}

	// 4. 平滑 idf：ln((1+N)/(1+df)) + 1
	n := float64(len(books))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		idf[i] = math.Log((1+n)/float64(1+docFreq[t])) + 1
	}

	// 5. tf·idf 稀疏向量，L2 归一化；条目按词项下标升序存储，
	// 使点积求和顺序固定，重建打分位级可比
	vectors := make([][]SparseEntry, len(docs))
	for i, doc := range docs {
		counts := make(map[int]float64)
		for _, t := range doc {
			if j, ok := vocab[t]; ok {
				counts[j]++
			}
		}
		vec := make([]SparseEntry, 0, len(counts))
		for j, tf := range counts {
			vec = append(vec, SparseEntry{Term: j, Weight: tf * idf[j]})
		}
		sort.Slice(vec, func(a, b int) bool { return vec[a].Term < vec[b].Term })
		var norm float64
		for _, e := range vec {
			norm += e.Weight * e.Weight
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for k := range vec {
				vec[k].Weight /= norm
			}
		}
		vectors[i] = vec
	}

	return &FittedVector{Terms: terms, IDF: idf, Vectors: vectors}, nil
}

// SparseEntry 是稀疏向量的单个分量：词表下标 + 归一化权重。
type SparseEntry struct {
	Term   int
	Weight float64
}

// FittedVector 是向量策略的已拟合快照。字段导出以便 gob 快照往返。
type FittedVector struct {
	Terms   []string        // 词表（字典序）
	IDF     []float64       // 与 Terms 对齐的平滑 idf
	Vectors [][]SparseEntry // 每本书的 L2 归一化稀疏向量
}

func (f *FittedVector) Strategy() string { return StrategyVector }

func (f *FittedVector) Len() int { return len(f.Vectors) }

// NumFeatures 返回词表规模（日志/观测用）。
func (f *FittedVector) NumFeatures() int { return len(f.Terms) }

// ScoreAll 返回 queryIdx 对其余所有图书的余弦相似度。
// 向量均已归一化，点积即余弦；防御性夹取到 [0,1]。
func (f *FittedVector) ScoreAll(queryIdx int) []ItemScore {
	if queryIdx < 0 || queryIdx >= len(f.Vectors) {
		return nil
	}
	query := f.Vectors[queryIdx]
	out := make([]ItemScore, 0, len(f.Vectors)-1)
	for i, vec := range f.Vectors {
		if i == queryIdx {
			continue
		}
		out = append(out, ItemScore{Index: i, Score: clamp01(dotSparse(query, vec))})
	}
	return out
}

// dotSparse 对两个按词项下标升序的稀疏向量做归并点积。
func dotSparse(a, b []SparseEntry) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Term < b[j].Term:
			i++
		case a[i].Term > b[j].Term:
			j++
		default:
			sum += a[i].Weight * b[j].Weight
			i++
			j++
		}
	}
	return sum
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var _ Model = (*VectorModel)(nil)
var _ Fitted = (*FittedVector)(nil)

package core

import "sort"

// Recommendation 是一次相似度查询的单个结果：图书 ID 与相似度分数。
// 排序约定：分数降序，分数相同按 ID 升序，保证结果可复现。
type Recommendation struct {
	BookID int64
	Score  float64
}

// SortRecommendations 按约定顺序原地排序：分数降序、ID 升序兜底。
// 所有返回推荐列表的路径都必须经过此排序，避免 map 遍历顺序泄漏到结果里。
func SortRecommendations(recs []Recommendation) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].BookID < recs[j].BookID
	})
}

// TruncateRecommendations 截取前 k 个结果；k <= 0 表示不截断。
func TruncateRecommendations(recs []Recommendation, k int) []Recommendation {
	if k <= 0 || len(recs) <= k {
		return recs
	}
	return recs[:k]
}

package model

import (
	"math"
	"testing"

	"github.com/CapYuno/Book-Share-App/core"
)

func keywordFit(t *testing.T, books []*core.Book) Fitted {
	t.Helper()
	fitted, err := NewKeywordModel().Fit(books)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	return fitted
}

func scoreOf(t *testing.T, scores []ItemScore, index int) float64 {
	t.Helper()
	for _, s := range scores {
		if s.Index == index {
			return s.Score
		}
	}
	t.Fatalf("index %d missing from scores %v", index, scores)
	return 0
}

func TestKeywordModelEmptyCatalog(t *testing.T) {
	_, err := NewKeywordModel().Fit(nil)
	if !core.IsEmptyCatalog(err) {
		t.Fatalf("Fit(nil) error = %v, want EMPTY_CATALOG", err)
	}
}

func TestKeywordModelScoring(t *testing.T) {
	books := []*core.Book{
		{ID: 1, Title: "Python Programming", Author: "Jane Doe", Genre: "Technology"},
		{ID: 2, Title: "Advanced Python", Author: "John Roe", Genre: "Technology"},
		{ID: 3, Title: "Cooking Basics", Author: "Sam Poe", Genre: "Cooking"},
	}
	fitted := keywordFit(t, books)

	scores := fitted.ScoreAll(0)
	if len(scores) != 2 {
		t.Fatalf("ScoreAll returned %d entries, want 2", len(scores))
	}

	// 书 1 vs 书 2：类别一致 +10，交集 {python, technology} +4 → 14/20
	if got, want := scoreOf(t, scores, 1), 0.7; math.Abs(got-want) > 1e-9 {
		t.Errorf("score(1,2) = %v, want %v", got, want)
	}
	// 书 1 vs 书 3：无任何重合 → 0
	if got := scoreOf(t, scores, 2); got != 0 {
		t.Errorf("score(1,3) = %v, want 0", got)
	}
}

func TestKeywordModelGenreMatchCaseInsensitive(t *testing.T) {
	books := []*core.Book{
		{ID: 1, Title: "Northern Lights", Genre: "Fiction"},
		{ID: 2, Title: "Southern Rivers", Genre: "fiction"},
	}
	fitted := keywordFit(t, books)

	// 类别 +10、类别词元交集 +2 → 12/20
	if got, want := scoreOf(t, fitted.ScoreAll(0), 1), 0.6; math.Abs(got-want) > 1e-9 {
		t.Errorf("cross-case genre score = %v, want %v", got, want)
	}
}

func TestKeywordModelMissingFieldsNoBonus(t *testing.T) {
	books := []*core.Book{
		{ID: 1, Title: "Unlabeled Manuscript"},
		{ID: 2, Title: "Anonymous Papers"},
	}
	fitted := keywordFit(t, books)

	// 双方类别与作者都缺失：不得因"空等于空"拿到任何加分
	if got := scoreOf(t, fitted.ScoreAll(0), 1); got != 0 {
		t.Errorf("score with missing fields = %v, want 0", got)
	}
}

func TestKeywordModelScoreMayExceedOne(t *testing.T) {
	// 强匹配目录：同作者、同类别、全部词元重合，校准后分数超过 1。
	// 这是文档化的口径，不是缺陷；调用方必须容忍。
	books := []*core.Book{
		{
			ID: 1, Title: "Distributed Systems Fundamentals", Author: "Grace Hopper",
			Genre: "Technology", Description: "consensus replication partitioning scalability observability",
		},
		{
			ID: 2, Title: "Distributed Systems Fundamentals", Author: "Grace Hopper",
			Genre: "Technology", Description: "consensus replication partitioning scalability observability",
		},
	}
	fitted := keywordFit(t, books)

	got := scoreOf(t, fitted.ScoreAll(0), 1)
	if got <= 1 {
		t.Errorf("strong-match score = %v, want > 1", got)
	}
}

func TestKeywordModelSelfNotScored(t *testing.T) {
	books := []*core.Book{
		{ID: 1, Title: "Alpha"},
		{ID: 2, Title: "Beta"},
		{ID: 3, Title: "Gamma"},
	}
	fitted := keywordFit(t, books)
	for _, s := range fitted.ScoreAll(1) {
		if s.Index == 1 {
			t.Fatal("ScoreAll returned the query item itself")
		}
	}
}

func TestKeywordModelOutOfRangeQuery(t *testing.T) {
	fitted := keywordFit(t, []*core.Book{{ID: 1, Title: "Solo"}})
	if got := fitted.ScoreAll(5); got != nil {
		t.Errorf("ScoreAll(5) = %v, want nil", got)
	}
	if got := fitted.ScoreAll(-1); got != nil {
		t.Errorf("ScoreAll(-1) = %v, want nil", got)
	}
}

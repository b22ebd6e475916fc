package recall

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/CapYuno/Book-Share-App/core"
)

// loanStoreStub 返回预置的已归还借阅（已按归还时间从新到旧排序）。
type loanStoreStub struct {
	returned []*core.Loan
	err      error
}

func (s *loanStoreStub) RecentReturned(ctx context.Context, borrowerID int64, limit int) ([]*core.Loan, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.returned) > limit {
		return s.returned[:limit], nil
	}
	return s.returned, nil
}

func (s *loanStoreStub) ActiveLoans(ctx context.Context) ([]*core.Loan, error) {
	return nil, nil
}

// querierStub 按书 ID 返回固定的相似结果。
type querierStub struct {
	recs map[int64][]core.Recommendation
}

func (q *querierStub) TopK(bookID int64, k int) ([]core.Recommendation, error) {
	recs, ok := q.recs[bookID]
	if !ok {
		return nil, core.ErrItemNotFound(core.ModuleIndex, bookID)
	}
	if len(recs) > k {
		recs = recs[:k]
	}
	return recs, nil
}

func returnedLoan(bookID int64, daysAgo int) *core.Loan {
	at := time.Now().AddDate(0, 0, -daysAgo)
	return &core.Loan{BookID: bookID, BorrowerID: 1, ReturnedAt: &at}
}

func TestForBorrowerNoHistory(t *testing.T) {
	h := &History{Loans: &loanStoreStub{}}
	recs, err := h.ForBorrower(context.Background(), &querierStub{}, 1, 3)
	if err != nil {
		t.Fatalf("ForBorrower() error = %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("ForBorrower() with no history = %v, want empty", recs)
	}
}

func TestForBorrowerRunningAverage(t *testing.T) {
	// 候选 30 被两本历史书推荐：先 0.8 后 0.4 → (0.8+0.4)/2 = 0.6。
	// 滑动平均对合并顺序敏感，合并顺序必须是历史从新到旧。
	h := &History{
		Loans: &loanStoreStub{returned: []*core.Loan{
			returnedLoan(10, 1),
			returnedLoan(20, 5),
		}},
	}
	q := &querierStub{recs: map[int64][]core.Recommendation{
		10: {{BookID: 30, Score: 0.8}, {BookID: 40, Score: 0.5}},
		20: {{BookID: 30, Score: 0.4}},
	}}
	recs, err := h.ForBorrower(context.Background(), q, 1, 5)
	if err != nil {
		t.Fatalf("ForBorrower() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d results, want 2: %v", len(recs), recs)
	}
	if recs[0].BookID != 30 || math.Abs(recs[0].Score-0.6) > 1e-9 {
		t.Errorf("merged candidate = %+v, want {30 0.6}", recs[0])
	}
	if recs[1].BookID != 40 || math.Abs(recs[1].Score-0.5) > 1e-9 {
		t.Errorf("single-source candidate = %+v, want {40 0.5}", recs[1])
	}
}

func TestForBorrowerMergeOrderDependence(t *testing.T) {
	// 三路滑动平均：((0.8+0.2)/2 + 0.6)/2 = 0.55，算术平均会得到 0.533…
	h := &History{
		Loans: &loanStoreStub{returned: []*core.Loan{
			returnedLoan(10, 1),
			returnedLoan(20, 2),
			returnedLoan(30, 3),
		}},
	}
	q := &querierStub{recs: map[int64][]core.Recommendation{
		10: {{BookID: 99, Score: 0.8}},
		20: {{BookID: 99, Score: 0.2}},
		30: {{BookID: 99, Score: 0.6}},
	}}
	recs, err := h.ForBorrower(context.Background(), q, 1, 1)
	if err != nil {
		t.Fatalf("ForBorrower() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d results, want 1", len(recs))
	}
	if math.Abs(recs[0].Score-0.55) > 1e-9 {
		t.Errorf("order-dependent merge = %v, want 0.55", recs[0].Score)
	}
}

func TestForBorrowerExcludesOwnHistory(t *testing.T) {
	h := &History{
		Loans: &loanStoreStub{returned: []*core.Loan{
			returnedLoan(10, 1),
			returnedLoan(20, 2),
		}},
	}
	// 书 10 的相似列表里含有历史书 20，必须被剔除
	q := &querierStub{recs: map[int64][]core.Recommendation{
		10: {{BookID: 20, Score: 0.9}, {BookID: 50, Score: 0.3}},
		20: {{BookID: 10, Score: 0.9}},
	}}
	recs, err := h.ForBorrower(context.Background(), q, 1, 5)
	if err != nil {
		t.Fatalf("ForBorrower() error = %v", err)
	}
	for _, rec := range recs {
		if rec.BookID == 10 || rec.BookID == 20 {
			t.Errorf("own history book %d recommended", rec.BookID)
		}
	}
	if len(recs) != 1 || recs[0].BookID != 50 {
		t.Fatalf("results = %v, want only book 50", recs)
	}
}

func TestForBorrowerSkipsVanishedHistoryBooks(t *testing.T) {
	// 历史书 77 已从目录删除（TopK 报 ITEM_NOT_FOUND）：该路静默为空
	h := &History{
		Loans: &loanStoreStub{returned: []*core.Loan{
			returnedLoan(77, 1),
			returnedLoan(10, 2),
		}},
	}
	q := &querierStub{recs: map[int64][]core.Recommendation{
		10: {{BookID: 50, Score: 0.3}},
	}}
	recs, err := h.ForBorrower(context.Background(), q, 1, 5)
	if err != nil {
		t.Fatalf("ForBorrower() error = %v", err)
	}
	if len(recs) != 1 || recs[0].BookID != 50 {
		t.Fatalf("results = %v, want only book 50", recs)
	}
}

func TestForBorrowerTruncatesToK(t *testing.T) {
	h := &History{
		Loans: &loanStoreStub{returned: []*core.Loan{returnedLoan(10, 1)}},
	}
	q := &querierStub{recs: map[int64][]core.Recommendation{
		10: {
			{BookID: 2, Score: 0.9},
			{BookID: 3, Score: 0.8},
			{BookID: 4, Score: 0.7},
			{BookID: 5, Score: 0.6},
		},
	}}
	recs, err := h.ForBorrower(context.Background(), q, 1, 2)
	if err != nil {
		t.Fatalf("ForBorrower() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d results, want 2", len(recs))
	}
	if recs[0].BookID != 2 || recs[1].BookID != 3 {
		t.Fatalf("results = %v, want top two by score", recs)
	}
}

func TestForBorrowerWindowLimitsHistory(t *testing.T) {
	h := &History{
		Loans: &loanStoreStub{returned: []*core.Loan{
			returnedLoan(10, 1),
			returnedLoan(20, 2),
			returnedLoan(30, 3),
		}},
		Window: 1,
	}
	q := &querierStub{recs: map[int64][]core.Recommendation{
		10: {{BookID: 50, Score: 0.5}},
		20: {{BookID: 60, Score: 0.5}},
		30: {{BookID: 70, Score: 0.5}},
	}}
	recs, err := h.ForBorrower(context.Background(), q, 1, 5)
	if err != nil {
		t.Fatalf("ForBorrower() error = %v", err)
	}
	if len(recs) != 1 || recs[0].BookID != 50 {
		t.Fatalf("results = %v, want only the newest source considered", recs)
	}
}

func TestForBorrowerLoanStoreError(t *testing.T) {
	h := &History{Loans: &loanStoreStub{err: errors.New("db gone")}}
	if _, err := h.ForBorrower(context.Background(), &querierStub{}, 1, 3); err == nil {
		t.Fatal("ForBorrower() with failing store succeeded, want error")
	}
}

package library

import (
	"context"
	"fmt"
	"time"

	"github.com/CapYuno/Book-Share-App/core"
)

type loanRow struct {
	ID         int64      `db:"id"`
	BookID     int64      `db:"book_id"`
	BorrowerID int64      `db:"borrower_id"`
	LoanedAt   time.Time  `db:"loaned_at"`
	DueAt      time.Time  `db:"due_at"`
	ReturnedAt *time.Time `db:"returned_at"`
}

func (r loanRow) toLoan() *core.Loan {
	return &core.Loan{
		ID:         r.ID,
		BookID:     r.BookID,
		BorrowerID: r.BorrowerID,
		LoanedAt:   r.LoanedAt,
		DueAt:      r.DueAt,
		ReturnedAt: r.ReturnedAt,
	}
}

// Checkout 登记一次借出。
func (s *Store) Checkout(ctx context.Context, bookID, borrowerID int64, dueAt time.Time) (*core.Loan, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO loans (book_id, borrower_id, loaned_at, due_at) VALUES (?, ?, ?, ?)`,
		bookID, borrowerID, now, dueAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("checkout book %d: %w", bookID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("checkout book %d: %w", bookID, err)
	}
	return &core.Loan{
		ID:         id,
		BookID:     bookID,
		BorrowerID: borrowerID,
		LoanedAt:   now,
		DueAt:      dueAt.UTC(),
	}, nil
}

// Return 登记归还。重复归还是幂等的（保留第一次归还时间）。
func (s *Store) Return(ctx context.Context, loanID int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE loans SET returned_at = ? WHERE id = ? AND returned_at IS NULL`,
		at.UTC(), loanID)
	if err != nil {
		return fmt.Errorf("return loan %d: %w", loanID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// 借阅不存在或已归还；前者交给调用方校验，后者幂等放过
		return nil
	}
	return nil
}

// RecentReturned 返回某借阅者最近 limit 条已归还借阅，按归还时间降序。
// 个性化推荐的"历史窗口"就建立在这条查询之上。
func (s *Store) RecentReturned(ctx context.Context, borrowerID int64, limit int) ([]*core.Loan, error) {
	var rows []loanRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, book_id, borrower_id, loaned_at, due_at, returned_at
		 FROM loans
		 WHERE borrower_id = ? AND returned_at IS NOT NULL
		 ORDER BY returned_at DESC
		 LIMIT ?`, borrowerID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent returned for borrower %d: %w", borrowerID, err)
	}
	loans := make([]*core.Loan, len(rows))
	for i, r := range rows {
		loans[i] = r.toLoan()
	}
	return loans, nil
}

// ActiveLoans 返回全部未归还借阅（提醒扫描用）。
func (s *Store) ActiveLoans(ctx context.Context) ([]*core.Loan, error) {
	var rows []loanRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, book_id, borrower_id, loaned_at, due_at, returned_at
		 FROM loans WHERE returned_at IS NULL ORDER BY due_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("active loans: %w", err)
	}
	loans := make([]*core.Loan, len(rows))
	for i, r := range rows {
		loans[i] = r.toLoan()
	}
	return loans, nil
}

// WasSent 判断某借阅的某种提醒是否已成功发送。
func (s *Store) WasSent(ctx context.Context, loanID int64, kind core.NotificationKind) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(1) FROM notifications
		 WHERE loan_id = ? AND kind = ? AND status = ?`,
		loanID, string(kind), core.NotifyStatusSent)
	if err != nil {
		return false, fmt.Errorf("notification lookup for loan %d: %w", loanID, err)
	}
	return count > 0, nil
}

// Record 落一条提醒发送记录（成功与失败都记，失败记录不参与去重）。
func (s *Store) Record(ctx context.Context, n *core.Notification) error {
	var sentAt any
	if n.SentAt != nil {
		sentAt = n.SentAt.UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (loan_id, kind, scheduled_at, sent_at, status)
		 VALUES (?, ?, ?, ?, ?)`,
		n.LoanID, string(n.Kind), n.ScheduledAt.UTC(), sentAt, n.Status)
	if err != nil {
		return fmt.Errorf("record notification for loan %d: %w", n.LoanID, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		n.ID = id
	}
	return nil
}

// 确保 Store 满足 core 的各读写接口
var (
	_ core.CatalogStore      = (*Store)(nil)
	_ core.LoanStore         = (*Store)(nil)
	_ core.NotificationStore = (*Store)(nil)
	_ core.BorrowerStore     = (*Store)(nil)
)

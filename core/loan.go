package core

import "time"

// Loan 是一次借阅交互记录。对推荐核心而言只读：
// ReturnedAt 非空的记录才算作借阅者的"已完成历史"。
type Loan struct {
	ID         int64
	BookID     int64
	BorrowerID int64
	LoanedAt   time.Time
	DueAt      time.Time
	ReturnedAt *time.Time
}

// Returned 判断借阅是否已归还（归还记录才参与个性化推荐）。
func (l *Loan) Returned() bool {
	return l.ReturnedAt != nil
}

// Overdue 判断借阅在 now 时刻是否逾期。已归还的借阅永不逾期。
func (l *Loan) Overdue(now time.Time) bool {
	if l.Returned() {
		return false
	}
	return now.After(l.DueAt)
}

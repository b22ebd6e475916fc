package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/CapYuno/Book-Share-App/core"
)

// Processor 是提醒扫描器。宿主环境的调度器（ticker、cron、任务队列）
// 周期性调用 ProcessDue 即可，本包不自带调度。
type Processor struct {
	Loans         core.LoanStore
	Borrowers     core.BorrowerStore
	Catalog       core.CatalogStore
	Notifications core.NotificationStore
	Mailer        Mailer

	// DaysBefore 到期前几天开始提醒（默认 3）
	DaysBefore int
	// DaysAfter 逾期几天后开始催还（默认 3）
	DaysAfter int

	// Now 便于测试注入时钟，缺省取 time.Now
	Now func() time.Time

	Log zerolog.Logger
}

// Stats 是一轮扫描的发送统计。
type Stats struct {
	BeforeDue int
	OnDue     int
	AfterDue  int
	Failed    int
}

// ProcessDue 扫描全部未归还借阅并发送应发而未发的提醒。
// 单笔发送失败只计入 Failed，不会中断整轮扫描。
func (p *Processor) ProcessDue(ctx context.Context) (Stats, error) {
	var stats Stats

	now := time.Now().UTC()
	if p.Now != nil {
		now = p.Now().UTC()
	}
	daysBefore := p.DaysBefore
	if daysBefore <= 0 {
		daysBefore = 3
	}
	daysAfter := p.DaysAfter
	if daysAfter <= 0 {
		daysAfter = 3
	}

	loans, err := p.Loans.ActiveLoans(ctx)
	if err != nil {
		return stats, fmt.Errorf("reminder sweep: %w", err)
	}

	for _, loan := range loans {
		for _, kind := range dueKinds(loan, now, daysBefore, daysAfter) {
			sent, err := p.Notifications.WasSent(ctx, loan.ID, kind)
			if err != nil {
				p.Log.Warn().Err(err).Int64("loan_id", loan.ID).Msg("dedup lookup failed, skipping")
				stats.Failed++
				continue
			}
			if sent {
				continue
			}
			if p.sendReminder(ctx, loan, kind, now) {
				switch kind {
				case core.NotifyBeforeDue:
					stats.BeforeDue++
				case core.NotifyOnDue:
					stats.OnDue++
				case core.NotifyAfterDue:
					stats.AfterDue++
				}
			} else {
				stats.Failed++
			}
		}
	}

	p.Log.Info().
		Int("before_due", stats.BeforeDue).
		Int("on_due", stats.OnDue).
		Int("after_due", stats.AfterDue).
		Int("failed", stats.Failed).
		Msg("reminder sweep finished")
	return stats, nil
}

// dueKinds 按日期（忽略时分秒）判断一笔借阅当前应发哪些提醒。
func dueKinds(loan *core.Loan, now time.Time, daysBefore, daysAfter int) []core.NotificationKind {
	var kinds []core.NotificationKind

	today := dateOf(now)
	dueDay := dateOf(loan.DueAt)
	beforeDay := dateOf(loan.DueAt.AddDate(0, 0, -daysBefore))
	afterDay := dateOf(loan.DueAt.AddDate(0, 0, daysAfter))

	if !today.Before(beforeDay) && today.Before(dueDay) {
		kinds = append(kinds, core.NotifyBeforeDue)
	}
	if today.Equal(dueDay) {
		kinds = append(kinds, core.NotifyOnDue)
	}
	if !today.Before(afterDay) {
		kinds = append(kinds, core.NotifyAfterDue)
	}
	return kinds
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sendReminder 发送一封提醒并落记录。返回是否发送成功。
func (p *Processor) sendReminder(ctx context.Context, loan *core.Loan, kind core.NotificationKind, now time.Time) bool {
	borrower, err := p.Borrowers.GetBorrower(ctx, loan.BorrowerID)
	if err != nil {
		p.Log.Warn().Err(err).Int64("loan_id", loan.ID).Msg("borrower lookup failed")
		return false
	}
	book, err := p.Catalog.GetBook(ctx, loan.BookID)
	if err != nil {
		p.Log.Warn().Err(err).Int64("loan_id", loan.ID).Msg("book lookup failed")
		return false
	}

	subject, body := composeReminder(loan, kind, borrower, book, now)
	sendErr := p.Mailer.Send(borrower.Email, subject, body)

	n := &core.Notification{
		LoanID:      loan.ID,
		Kind:        kind,
		ScheduledAt: now,
		Status:      core.NotifyStatusSent,
	}
	if sendErr != nil {
		p.Log.Error().Err(sendErr).
			Int64("loan_id", loan.ID).
			Str("kind", string(kind)).
			Msg("reminder send failed")
		n.Status = core.NotifyStatusFailed
	} else {
		sentAt := now
		n.SentAt = &sentAt
		p.Log.Info().
			Int64("loan_id", loan.ID).
			Str("kind", string(kind)).
			Str("to", borrower.Email).
			Msg("reminder sent")
	}
	if err := p.Notifications.Record(ctx, n); err != nil {
		// 记录失败意味着下一轮可能重发，比丢提醒可接受
		p.Log.Warn().Err(err).Int64("loan_id", loan.ID).Msg("notification record failed")
	}
	return sendErr == nil
}

// composeReminder 生成提醒邮件的主题与正文。
func composeReminder(loan *core.Loan, kind core.NotificationKind, borrower *core.Borrower, book *core.Book, now time.Time) (string, string) {
	dueDate := loan.DueAt.Format("Monday, January 2, 2006")
	switch kind {
	case core.NotifyBeforeDue:
		daysLeft := int(dateOf(loan.DueAt).Sub(dateOf(now)).Hours() / 24)
		return fmt.Sprintf("Reminder: %q due soon", book.Title),
			fmt.Sprintf(`Hello %s,

This is a friendly reminder that your loan is due soon:

Book: %s
Author: %s
Due Date: %s
Days Remaining: %d

Please remember to return the book by the due date to avoid overdue status.

Thank you,
BookShare Library Management System`,
				borrower.Name, book.Title, book.Author, dueDate, daysLeft)
	case core.NotifyOnDue:
		return fmt.Sprintf("Reminder: %q due today", book.Title),
			fmt.Sprintf(`Hello %s,

This is a reminder that your loan is due TODAY:

Book: %s
Author: %s
Due Date: %s

Please return the book today to avoid overdue status.

Thank you,
BookShare Library Management System`,
				borrower.Name, book.Title, book.Author, dueDate)
	default:
		daysOver := int(dateOf(now).Sub(dateOf(loan.DueAt)).Hours() / 24)
		return fmt.Sprintf("OVERDUE: %q is overdue", book.Title),
			fmt.Sprintf(`Hello %s,

Our records show your loan is OVERDUE:

Book: %s
Author: %s
Due Date: %s
Days Overdue: %d

Please return the book as soon as possible.

Thank you,
BookShare Library Management System`,
				borrower.Name, book.Title, book.Author, dueDate, daysOver)
	}
}

package core

import "time"

// NotificationKind 标记提醒邮件的种类。
type NotificationKind string

const (
	NotifyBeforeDue NotificationKind = "before_due" // 到期前提醒
	NotifyOnDue     NotificationKind = "on_due"     // 到期当天提醒
	NotifyAfterDue  NotificationKind = "after_due"  // 逾期提醒
)

// 通知状态常量。
const (
	NotifyStatusPending = "pending"
	NotifyStatusSent    = "sent"
	NotifyStatusFailed  = "failed"
)

// Notification 是一条提醒发送记录，同时承担去重职责：
// 同一笔借阅的同一种提醒只成功发送一次。
type Notification struct {
	ID          int64
	LoanID      int64
	Kind        NotificationKind
	ScheduledAt time.Time
	SentAt      *time.Time
	Status      string
}

package core

import "time"

// Borrower 是借阅者（馆员视角的读者档案）。
// 推荐核心只消费其 ID 与 Email，档案维护由 CRUD 协作层负责。
type Borrower struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

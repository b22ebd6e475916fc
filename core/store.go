package core

import (
	"context"
	"errors"
)

// ErrStoreNotFound 是存储层"键不存在"的哨兵错误。
var ErrStoreNotFound = errors.New("store: key not found")

// SnapshotStore 是快照存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 使用场景：
//   - 缓存已拟合的推荐索引快照，避免每次进程启动都重新拟合
//
// 实现：
//   - store.MemoryStore / store.FileStore / store.RedisStore
type SnapshotStore interface {
	// Name 返回存储后端名称（用于日志）
	Name() string

	// Get 读取单个 key 的值；不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value
	Set(ctx context.Context, key string, value []byte) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// Close 关闭连接/释放资源
	Close() error
}

// CatalogStore 是目录读取接口，由 CRUD 协作层（library 包）实现。
// 推荐核心只读目录，写入与触发重建由协作层负责。
type CatalogStore interface {
	// ListBooks 返回全部馆藏图书，按 ID 升序
	ListBooks(ctx context.Context) ([]*Book, error)

	// GetBook 按 ID 读取一本图书；不存在时返回 ITEM_NOT_FOUND
	GetBook(ctx context.Context, id int64) (*Book, error)
}

// LoanStore 是借阅历史读取接口。
type LoanStore interface {
	// RecentReturned 返回某借阅者最近 limit 条已归还借阅，按归还时间降序。
	// 未归还（ReturnedAt 为空）的借阅不算历史。
	RecentReturned(ctx context.Context, borrowerID int64, limit int) ([]*Loan, error)

	// ActiveLoans 返回全部未归还借阅（提醒扫描用）
	ActiveLoans(ctx context.Context) ([]*Loan, error)
}

// NotificationStore 是提醒发送记录的读写接口，承担按 (loan, kind) 去重。
type NotificationStore interface {
	// WasSent 判断某借阅的某种提醒是否已成功发送过
	WasSent(ctx context.Context, loanID int64, kind NotificationKind) (bool, error)

	// Record 落一条发送记录（成功或失败都记录）
	Record(ctx context.Context, n *Notification) error
}

// BorrowerStore 是借阅者档案读取接口。
type BorrowerStore interface {
	// GetBorrower 按 ID 读取借阅者
	GetBorrower(ctx context.Context, id int64) (*Borrower, error)
}

package core

import "time"

// Book 是推荐链路中的统一目录条目：一本可被推荐的馆藏图书。
// 一旦进入某个 FittedIndex 快照即视为不可变；目录写入方（CRUD 协作层）
// 修改图书后必须触发重建。
type Book struct {
	ID          int64
	Title       string
	Author      string
	ISBN        string
	Year        int
	Genre       string
	Description string
	CreatedAt   time.Time
}

// NewBook 创建一本图书，ID 由目录写入方分配。
func NewBook(id int64, title, author string) *Book {
	return &Book{
		ID:     id,
		Title:  title,
		Author: author,
	}
}

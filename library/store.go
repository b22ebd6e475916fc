// Package library 是流通库（books / borrowers / loans / notifications）的
// SQLite 实现，充当推荐核心的目录与历史数据源。
//
// 职责边界：CRUD 协作层写目录后必须调用 recommend.Service 的
// InvalidateAndRebuild，本包不隐式触发重建。
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/CapYuno/Book-Share-App/core"
)

// Store 封装一个 SQLite 连接与全部流通表操作。
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// Open 打开（必要时初始化）流通库。path 用 ":memory:" 可得到纯内存库。
func Open(path string, logger zerolog.Logger) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open circulation db %s: %w", path, err)
	}
	s := &Store{db: db, log: logger.With().Str("component", "library").Logger()}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS books (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT NOT NULL,
			author      TEXT NOT NULL,
			isbn        TEXT UNIQUE,
			year        INTEGER,
			genre       TEXT,
			description TEXT,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS borrowers (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			phone      TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS loans (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			book_id     INTEGER NOT NULL REFERENCES books(id),
			borrower_id INTEGER NOT NULL REFERENCES borrowers(id),
			loaned_at   DATETIME NOT NULL,
			due_at      DATETIME NOT NULL,
			returned_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			loan_id      INTEGER NOT NULL REFERENCES loans(id),
			kind         TEXT NOT NULL,
			scheduled_at DATETIME NOT NULL,
			sent_at      DATETIME,
			status       TEXT NOT NULL DEFAULT 'pending'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_borrower ON loans(borrower_id, returned_at)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_due ON loans(due_at)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_loan ON notifications(loan_id, kind, status)`,
	}
	for _, ddl := range tables {
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type bookRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Author      string         `db:"author"`
	ISBN        sql.NullString `db:"isbn"`
	Year        sql.NullInt64  `db:"year"`
	Genre       sql.NullString `db:"genre"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r bookRow) toBook() *core.Book {
	return &core.Book{
		ID:          r.ID,
		Title:       r.Title,
		Author:      r.Author,
		ISBN:        r.ISBN.String,
		Year:        int(r.Year.Int64),
		Genre:       r.Genre.String,
		Description: r.Description.String,
		CreatedAt:   r.CreatedAt,
	}
}

// ListBooks 返回全部馆藏，按 ID 升序（拟合语料的稳定顺序依赖它）。
func (s *Store) ListBooks(ctx context.Context) ([]*core.Book, error) {
	var rows []bookRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, title, author, isbn, year, genre, description, created_at
		 FROM books ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	books := make([]*core.Book, len(rows))
	for i, r := range rows {
		books[i] = r.toBook()
	}
	return books, nil
}

// GetBook 按 ID 读取。不存在返回 ITEM_NOT_FOUND。
func (s *Store) GetBook(ctx context.Context, id int64) (*core.Book, error) {
	var row bookRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, title, author, isbn, year, genre, description, created_at
		 FROM books WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrItemNotFound(core.ModuleLibrary, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return row.toBook(), nil
}

// AddBook 新增图书，返回分配的 ID。调用方随后负责触发重建。
func (s *Store) AddBook(ctx context.Context, b *core.Book) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO books (title, author, isbn, year, genre, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.Title, b.Author, nullStr(b.ISBN), nullInt(b.Year), nullStr(b.Genre), nullStr(b.Description))
	if err != nil {
		return 0, fmt.Errorf("add book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add book: %w", err)
	}
	b.ID = id
	return id, nil
}

// UpdateBook 整体更新一本图书。调用方随后负责触发重建。
func (s *Store) UpdateBook(ctx context.Context, b *core.Book) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE books SET title = ?, author = ?, isbn = ?, year = ?, genre = ?, description = ?
		 WHERE id = ?`,
		b.Title, b.Author, nullStr(b.ISBN), nullInt(b.Year), nullStr(b.Genre), nullStr(b.Description), b.ID)
	if err != nil {
		return fmt.Errorf("update book %d: %w", b.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrItemNotFound(core.ModuleLibrary, b.ID)
	}
	return nil
}

// DeleteBook 删除图书。调用方随后负责触发重建。
func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	return nil
}

// AddBorrower 新增借阅者档案。
func (s *Store) AddBorrower(ctx context.Context, b *core.Borrower) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO borrowers (name, email, phone) VALUES (?, ?, ?)`,
		b.Name, b.Email, nullStr(b.Phone))
	if err != nil {
		return 0, fmt.Errorf("add borrower: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add borrower: %w", err)
	}
	b.ID = id
	return id, nil
}

// GetBorrower 按 ID 读取借阅者。
func (s *Store) GetBorrower(ctx context.Context, id int64) (*core.Borrower, error) {
	var row struct {
		ID        int64          `db:"id"`
		Name      string         `db:"name"`
		Email     string         `db:"email"`
		Phone     sql.NullString `db:"phone"`
		CreatedAt time.Time      `db:"created_at"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT id, name, email, phone, created_at FROM borrowers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrItemNotFound(core.ModuleLibrary, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get borrower %d: %w", id, err)
	}
	return &core.Borrower{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Phone:     row.Phone.String,
		CreatedAt: row.CreatedAt,
	}, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

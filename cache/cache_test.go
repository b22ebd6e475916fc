package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/CapYuno/Book-Share-App/core"
	"github.com/CapYuno/Book-Share-App/model"
	"github.com/CapYuno/Book-Share-App/store"
)

func testBooks() []*core.Book {
	return []*core.Book{
		{ID: 1, Title: "Python Programming", Genre: "Technology"},
		{ID: 2, Title: "Advanced Python", Genre: "Technology"},
		{ID: 3, Title: "Cooking Basics", Genre: "Cooking"},
	}
}

func newManager(s core.SnapshotStore) *Manager {
	return NewManager(s, "", model.NewKeywordModel(), zerolog.Nop())
}

func TestLoadMissReturnsNil(t *testing.T) {
	m := newManager(store.NewMemoryStore())
	idx, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() on empty store error = %v", err)
	}
	if idx != nil {
		t.Fatalf("Load() on empty store = %v, want nil", idx)
	}
}

func TestRebuildSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newManager(store.NewMemoryStore())

	built, err := m.Rebuild(ctx, testBooks())
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	loaded, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded == nil {
		t.Fatal("Load() after Rebuild returned nil")
	}
	if loaded.Len() != built.Len() {
		t.Fatalf("loaded %d books, want %d", loaded.Len(), built.Len())
	}
	for _, id := range built.BookIDs {
		want, _ := built.TopK(id, 10)
		got, err := loaded.TopK(id, 10)
		if err != nil {
			t.Fatalf("TopK(%d) after load: %v", id, err)
		}
		if len(got) != len(want) {
			t.Fatalf("TopK(%d) length differs after load", id)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("TopK(%d)[%d] = %v, want %v", id, i, got[i], want[i])
			}
		}
	}
}

func TestRebuildEmptyCatalog(t *testing.T) {
	m := newManager(store.NewMemoryStore())
	_, err := m.Rebuild(context.Background(), nil)
	if !core.IsEmptyCatalog(err) {
		t.Fatalf("Rebuild(nil) error = %v, want EMPTY_CATALOG", err)
	}
}

func TestLoadCorruptedSnapshot(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	if err := s.Set(ctx, DefaultSnapshotKey, []byte("corrupted payload")); err != nil {
		t.Fatal(err)
	}
	m := newManager(s)
	_, err := m.Load(ctx)
	if !core.IsCachePersistence(err) {
		t.Fatalf("Load() corrupted error = %v, want CACHE_PERSISTENCE", err)
	}
}

// failingStore 写入永远失败，用于验证落盘失败不吞掉成功的拟合。
type failingStore struct {
	*store.MemoryStore
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("disk full")
}

func TestRebuildSurvivesSaveFailure(t *testing.T) {
	m := newManager(&failingStore{store.NewMemoryStore()})
	idx, err := m.Rebuild(context.Background(), testBooks())
	if err != nil {
		t.Fatalf("Rebuild() with failing store error = %v, want nil", err)
	}
	if idx == nil || idx.Len() != 3 {
		t.Fatal("Rebuild() must return the in-memory index even when persistence fails")
	}
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	m := newManager(store.NewMemoryStore())
	if _, err := m.Rebuild(ctx, testBooks()); err != nil {
		t.Fatal(err)
	}
	if err := m.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	idx, err := m.Load(ctx)
	if err != nil || idx != nil {
		t.Fatalf("Load() after Invalidate = (%v, %v), want (nil, nil)", idx, err)
	}
}

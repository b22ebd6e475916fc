package store

import (
	"context"
	"errors"
	"testing"

	"github.com/CapYuno/Book-Share-App/core"
)

func runStoreContract(t *testing.T, s core.SnapshotStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrStoreNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrStoreNotFound", err)
	}

	payload := []byte("snapshot bytes")
	if err := s.Set(ctx, "snap", payload); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := s.Get(ctx, "snap")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("Get() = %q, want %q", got, payload)
	}

	// 覆盖写
	if err := s.Set(ctx, "snap", []byte("v2")); err != nil {
		t.Fatalf("overwrite Set() error = %v", err)
	}
	got, _ = s.Get(ctx, "snap")
	if string(got) != "v2" {
		t.Fatalf("after overwrite Get() = %q, want v2", got)
	}

	if err := s.Delete(ctx, "snap"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, "snap"); !errors.Is(err, core.ErrStoreNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrStoreNotFound", err)
	}

	// 删除不存在的键应当幂等
	if err := s.Delete(ctx, "snap"); err != nil {
		t.Fatalf("repeated Delete() error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	runStoreContract(t, s)
}

func TestMemoryStoreCopiesValue(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("original")
	if err := s.Set(ctx, "k", buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'
	got, _ := s.Get(ctx, "k")
	if string(got) != "original" {
		t.Fatalf("stored value mutated through caller slice: %q", got)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()
	runStoreContract(t, s)
}

func TestFileStoreRejectsEmptyDir(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Fatal("NewFileStore(\"\") succeeded, want error")
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Set(ctx, "snap", []byte("persisted")); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := second.Get(ctx, "snap")
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if string(got) != "persisted" {
		t.Fatalf("Get() after reopen = %q, want persisted", got)
	}
}

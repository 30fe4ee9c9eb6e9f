package metacache

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache", "catalog.db"), ttl)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t, time.Hour)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "us/albums/1"); err != nil || ok {
		t.Fatalf("expected miss on empty store, ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, "us/albums/1", []byte(`{"name":"first"}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, "us/albums/1", []byte(`{"name":"second"}`)); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	payload, ok, err := store.Get(ctx, "us/albums/1")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if string(payload) != `{"name":"second"}` {
		t.Fatalf("unexpected payload %s", payload)
	}
	if n, err := store.Count(ctx); err != nil || n != 1 {
		t.Fatalf("expected one entry, got %d err=%v", n, err)
	}
}

func TestExpiredEntriesMissAndPrune(t *testing.T) {
	store := openTestStore(t, time.Hour)
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0)

	store.now = func() time.Time { return base }
	if err := store.Put(ctx, "old", []byte("a")); err != nil {
		t.Fatalf("Put old: %v", err)
	}
	store.now = func() time.Time { return base.Add(90 * time.Minute) }
	if err := store.Put(ctx, "fresh", []byte("b")); err != nil {
		t.Fatalf("Put fresh: %v", err)
	}

	if _, ok, _ := store.Get(ctx, "old"); ok {
		t.Fatal("expired entry should miss")
	}
	if _, ok, _ := store.Get(ctx, "fresh"); !ok {
		t.Fatal("fresh entry should hit")
	}
	removed, err := store.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one pruned entry, got %d", removed)
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	store := openTestStore(t, 0)
	ctx := context.Background()
	store.now = func() time.Time { return time.Unix(0, 0) }
	if err := store.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	store.now = time.Now
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("entry should not expire without a TTL")
	}
	if removed, err := store.Prune(ctx); err != nil || removed != 0 {
		t.Fatalf("Prune without TTL removed %d err=%v", removed, err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	first, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.Put(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = first.Close()

	second, err := Open(path, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	if payload, ok, _ := second.Get(context.Background(), "k"); !ok || string(payload) != "v" {
		t.Fatalf("entry lost across reopen: %q %v", payload, ok)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := Open(path, 0); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  ", 0); err == nil {
		t.Fatal("expected error for empty path")
	}
}

type codeErr int

func (c codeErr) Error() string { return "sqlite error" }
func (c codeErr) Code() int     { return int(c) }

func TestRetryOnBusy(t *testing.T) {
	calls := 0
	err := retryOnBusy(context.Background(), func() error {
		calls++
		if calls < 3 {
			return codeErr(sqliteBusyCode)
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("expected success after 3 calls, got %d err=%v", calls, err)
	}

	calls = 0
	err = retryOnBusy(context.Background(), func() error {
		calls++
		return sql.ErrConnDone
	})
	if !errors.Is(err, sql.ErrConnDone) || calls != 1 {
		t.Fatalf("non-busy errors must not retry, calls=%d err=%v", calls, err)
	}
}

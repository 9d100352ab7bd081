package database

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreLoadEmpty(t *testing.T) {
	store := newTestSQLiteStore(t)

	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if state.Len() != 0 {
		t.Errorf("Expected empty state, got %d records", state.Len())
	}
}

func TestSQLiteStoreSaveReplaces(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	first := NewState()
	first.Insert("a", 10)
	first.Insert("b", 20)
	if err := store.Save(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := NewState()
	second.Insert("b", 20)
	second.Insert("c", 30)
	if err := store.Save(ctx, second); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Len() != 2 {
		t.Fatalf("Expected 2 records, got %d", loaded.Len())
	}
	if loaded.Contains("a") {
		t.Error("Expected record 'a' to be gone after replacing save")
	}
	if ts, ok := loaded.FirstSeen("c"); !ok || ts != 30 {
		t.Errorf("Expected 'c' at 30, got %d (%v)", ts, ok)
	}
}

func TestSQLiteStoreMalformedRecords(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	if _, err := store.db.ExecContext(ctx,
		`INSERT INTO seen_items (key, first_seen) VALUES ('good', 100), ('text', 'yesterday')`); err != nil {
		t.Fatal(err)
	}

	state, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if state.Stats().Malformed != 1 {
		t.Fatalf("Expected 1 malformed record, got %d", state.Stats().Malformed)
	}

	state.Insert("new", 200)
	if err := store.Save(ctx, state); err != nil {
		t.Fatal(err)
	}

	var value string
	if err := store.db.QueryRowContext(ctx,
		`SELECT first_seen FROM seen_items WHERE key = 'text'`).Scan(&value); err != nil {
		t.Fatal(err)
	}
	if value != "yesterday" {
		t.Errorf("Expected malformed value to be kept, got %q", value)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	state := NewState()
	state.Insert("persisted", 42)
	if err := store.Save(ctx, state); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	loaded, err := reopened.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Contains("persisted") {
		t.Error("Expected record to survive reopening the database")
	}
}

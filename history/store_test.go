package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// Each :memory: connection is its own database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStore_Init(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	defer store.Close()

	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='snapshots'").Scan(&count)
	if count != 1 {
		t.Fatal("snapshots table not created")
	}
}

func TestStore_RecordAndQueryBySession(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	store.Init()

	for i := 0; i < 5; i++ {
		store.RecordAsync(&Snapshot{
			SnapshotID: "snap",
			SessionID:  "sess_a",
			PageURL:    "https://example.com",
			Kind:       KindTree,
			Payload:    []byte(`{"type":1}`),
			TakenAt:    int64(1000 + i),
		})
	}
	store.RecordAsync(&Snapshot{
		SnapshotID: "other",
		SessionID:  "sess_b",
		PageURL:    "https://example.com",
		Kind:       KindMarkup,
		Payload:    []byte("<html>"),
		TakenAt:    2000,
	})

	// Close drains the buffer.
	store.Close()

	got, err := store.BySession(context.Background(), "sess_a")
	if err != nil {
		t.Fatalf("BySession: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("session snapshots: got %d, want 5", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].TakenAt < got[i-1].TakenAt {
			t.Error("snapshots not in capture order")
		}
	}
	if got[0].Kind != KindTree {
		t.Errorf("kind: got %q, want tree", got[0].Kind)
	}
}

func TestStore_Prune(t *testing.T) {
	db := setupDB(t)
	store := NewStore(db)
	store.Init()

	old := time.Now().Add(-48 * time.Hour).UnixMilli()
	store.RecordAsync(&Snapshot{SnapshotID: "old", SessionID: "s", PageURL: "u",
		Kind: KindTree, Payload: []byte("x"), TakenAt: old})
	store.RecordAsync(&Snapshot{SnapshotID: "new", SessionID: "s", PageURL: "u",
		Kind: KindTree, Payload: []byte("y")})
	store.Close()

	n, err := store.Prune(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned: got %d, want 1", n)
	}

	left, err := store.BySession(context.Background(), "s")
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 1 || left[0].SnapshotID != "new" {
		t.Errorf("remaining: got %v", left)
	}
}

// Package history persists inspection snapshots to SQLite so a
// session's fetches can be revisited after the page has moved on.
// Writes are asynchronous and batched; the hot path never blocks on
// the database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Schema for the snapshots table. Call Store.Init() or apply manually.
const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	snapshot_id TEXT NOT NULL,
	session_id TEXT NOT NULL,
	page_url TEXT NOT NULL,
	kind TEXT NOT NULL,
	payload BLOB NOT NULL,
	taken_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_session ON snapshots(session_id, taken_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(taken_at);
`

// Kind labels what a stored payload contains.
type Kind string

const (
	KindTree   Kind = "tree"
	KindMarkup Kind = "markup"
)

// Snapshot is one recorded fetch result.
type Snapshot struct {
	SnapshotID string
	SessionID  string
	PageURL    string
	Kind       Kind
	Payload    []byte
	TakenAt    int64
}

// Store persists snapshots asynchronously. Open it with the
// modernc.org/sqlite driver.
type Store struct {
	db   *sql.DB
	ch   chan *Snapshot
	done chan struct{}
	once sync.Once
}

// NewStore creates a snapshot store backed by the given database
// connection and starts the flush goroutine.
func NewStore(db *sql.DB) *Store {
	s := &Store{
		db:   db,
		ch:   make(chan *Snapshot, 256),
		done: make(chan struct{}),
	}
	go s.flushLoop()
	return s
}

// Init creates the snapshots table if it doesn't exist.
func (s *Store) Init() error {
	_, err := s.db.Exec(Schema)
	return err
}

// RecordAsync queues a snapshot for persistence. Non-blocking; drops
// if the buffer is full to avoid backpressure on fetches.
func (s *Store) RecordAsync(snap *Snapshot) {
	if snap.TakenAt == 0 {
		snap.TakenAt = time.Now().UnixMilli()
	}
	select {
	case s.ch <- snap:
	default:
	}
}

// BySession returns a session's snapshots in capture order.
func (s *Store) BySession(ctx context.Context, sessionID string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT snapshot_id, session_id, page_url, kind, payload, taken_at
		FROM snapshots WHERE session_id = ? ORDER BY taken_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("history: query session: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.SnapshotID, &snap.SessionID, &snap.PageURL,
			&snap.Kind, &snap.Payload, &snap.TakenAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Prune deletes snapshots older than the given age.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE taken_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	return res.RowsAffected()
}

// Close drains the buffer and stops the flush goroutine.
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.ch)
		<-s.done
	})
	return nil
}

func (s *Store) flushLoop() {
	defer close(s.done)

	batch := make([]*Snapshot, 0, 32)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-s.ch:
			if !ok {
				s.flushBatch(batch)
				return
			}
			batch = append(batch, snap)
			if len(batch) >= 32 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *Store) flushBatch(batch []*Snapshot) {
	if len(batch) == 0 {
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		slog.Error("history: begin tx", "error", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO snapshots
		(snapshot_id, session_id, page_url, kind, payload, taken_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		slog.Error("history: prepare", "error", err)
		return
	}
	defer stmt.Close()

	for _, snap := range batch {
		if _, err := stmt.Exec(snap.SnapshotID, snap.SessionID, snap.PageURL,
			string(snap.Kind), snap.Payload, snap.TakenAt); err != nil {
			slog.Error("history: insert", "error", err)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("history: commit", "error", err)
	}
}

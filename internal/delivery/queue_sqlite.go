package delivery

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wolfman30/contractor-leads/internal/leads"
)

const sqliteQueueSchema = `
CREATE TABLE IF NOT EXISTS lead_queue (
	id TEXT PRIMARY KEY,
	service_id TEXT NOT NULL,
	payload TEXT NOT NULL,
	queued_at TIMESTAMP NOT NULL
)`

// SQLiteQueue stores queued leads in an embedded SQLite file. It is the
// default local queue because it needs no external service.
type SQLiteQueue struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLiteQueue opens (or creates) the database at path.
func OpenSQLiteQueue(ctx context.Context, path string) (*SQLiteQueue, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("delivery: open sqlite queue: %w", err)
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)
	q, err := NewSQLiteQueue(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return q, nil
}

// NewSQLiteQueue wraps an open handle and ensures the table exists.
func NewSQLiteQueue(ctx context.Context, db *sql.DB) (*SQLiteQueue, error) {
	if db == nil {
		return nil, fmt.Errorf("delivery: sqlite handle required")
	}
	if _, err := db.ExecContext(ctx, sqliteQueueSchema); err != nil {
		return nil, fmt.Errorf("delivery: create sqlite queue table: %w", err)
	}
	return &SQLiteQueue{db: db, now: time.Now}, nil
}

func (q *SQLiteQueue) Enqueue(ctx context.Context, payload *leads.Payload) (QueuedLead, error) {
	entry := newQueuedLead(payload, q.now())
	data, err := encodeQueuedLead(entry)
	if err != nil {
		return QueuedLead{}, err
	}
	_, err = q.db.ExecContext(ctx,
		`INSERT INTO lead_queue (id, service_id, payload, queued_at) VALUES (?, ?, ?, ?)`,
		entry.ID, payload.Service.ID, string(data), entry.QueuedAt,
	)
	if err != nil {
		return QueuedLead{}, fmt.Errorf("delivery: insert sqlite queue: %w", err)
	}
	return entry, nil
}

func (q *SQLiteQueue) List(ctx context.Context, limit int) ([]QueuedLead, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT payload FROM lead_queue ORDER BY queued_at DESC, rowid DESC LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("delivery: list sqlite queue: %w", err)
	}
	defer rows.Close()

	var entries []QueuedLead
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("delivery: scan sqlite queue: %w", err)
		}
		entry, err := decodeQueuedLead([]byte(raw))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (q *SQLiteQueue) Len(ctx context.Context) (int64, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lead_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("delivery: count sqlite queue: %w", err)
	}
	return n, nil
}

func (q *SQLiteQueue) Close() error {
	return q.db.Close()
}

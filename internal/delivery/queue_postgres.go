package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wolfman30/contractor-leads/internal/leads"
)

// PgxDB is the subset of *pgxpool.Pool the queue needs.
type PgxDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresQueue stores queued leads in the lead_queue table created by
// the migrations.
type PostgresQueue struct {
	db  PgxDB
	now func() time.Time
}

func NewPostgresQueue(db PgxDB) *PostgresQueue {
	if db == nil {
		panic("delivery: pgx pool required")
	}
	return &PostgresQueue{db: db, now: time.Now}
}

func (q *PostgresQueue) Enqueue(ctx context.Context, payload *leads.Payload) (QueuedLead, error) {
	entry := newQueuedLead(payload, q.now())
	data, err := encodeQueuedLead(entry)
	if err != nil {
		return QueuedLead{}, err
	}
	query := `
		INSERT INTO lead_queue (id, service_id, payload, queued_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := q.db.Exec(ctx, query, entry.ID, payload.Service.ID, data, entry.QueuedAt); err != nil {
		return QueuedLead{}, fmt.Errorf("delivery: insert lead_queue: %w", err)
	}
	return entry, nil
}

func (q *PostgresQueue) List(ctx context.Context, limit int) ([]QueuedLead, error) {
	query := `
		SELECT payload
		FROM lead_queue
		ORDER BY queued_at DESC
		LIMIT $1
	`
	rows, err := q.db.Query(ctx, query, int32(normalizeLimit(limit)))
	if err != nil {
		return nil, fmt.Errorf("delivery: list lead_queue: %w", err)
	}
	defer rows.Close()

	var entries []QueuedLead
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("delivery: scan lead_queue: %w", err)
		}
		entry, err := decodeQueuedLead(raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (q *PostgresQueue) Len(ctx context.Context) (int64, error) {
	var n int64
	if err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM lead_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("delivery: count lead_queue: %w", err)
	}
	return n, nil
}

package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// DB is the subset of *pgxpool.Pool used by PostgresRepository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores one kind of record as jsonb rows in
// content_records.
type PostgresRepository[T Record[T]] struct {
	db   DB
	kind Kind
}

func NewPostgresRepository[T Record[T]](db DB) *PostgresRepository[T] {
	if db == nil {
		panic("content: pgx pool required")
	}
	var zero T
	return &PostgresRepository[T]{db: db, kind: zero.Kind()}
}

func (r *PostgresRepository[T]) List(ctx context.Context, opts ListOptions) ([]Entry[T], error) {
	query := `
		SELECT id, data, created_at, updated_at
		FROM content_records
		WHERE kind = $1 AND ($2 = false OR published)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, string(r.kind), opts.PublishedOnly, opts.limit(), max(opts.Offset, 0))
	if err != nil {
		return nil, fmt.Errorf("content: list %s: %w", r.kind, err)
	}
	defer rows.Close()

	entries := []Entry[T]{}
	for rows.Next() {
		e, err := scanEntry[T](rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresRepository[T]) Get(ctx context.Context, id uuid.UUID) (Entry[T], error) {
	query := `
		SELECT id, data, created_at, updated_at
		FROM content_records
		WHERE kind = $1 AND id = $2
	`
	return r.one(ctx, query, string(r.kind), id)
}

func (r *PostgresRepository[T]) GetBySlug(ctx context.Context, slug string) (Entry[T], error) {
	query := `
		SELECT id, data, created_at, updated_at
		FROM content_records
		WHERE kind = $1 AND slug = $2
	`
	return r.one(ctx, query, string(r.kind), slug)
}

func (r *PostgresRepository[T]) Create(ctx context.Context, rec T) (Entry[T], error) {
	rec, err := prepare(rec)
	if err != nil {
		return Entry[T]{}, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return Entry[T]{}, fmt.Errorf("content: marshal %s: %w", r.kind, err)
	}
	query := `
		INSERT INTO content_records (id, kind, slug, data, published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, data, created_at, updated_at
	`
	return r.one(ctx, query, uuid.New(), string(r.kind), nullable(rec.SlugValue()), data, rec.IsPublished())
}

func (r *PostgresRepository[T]) Update(ctx context.Context, id uuid.UUID, rec T) (Entry[T], error) {
	rec, err := prepare(rec)
	if err != nil {
		return Entry[T]{}, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return Entry[T]{}, fmt.Errorf("content: marshal %s: %w", r.kind, err)
	}
	query := `
		UPDATE content_records
		SET slug = $3, data = $4, published = $5, updated_at = now()
		WHERE kind = $1 AND id = $2
		RETURNING id, data, created_at, updated_at
	`
	return r.one(ctx, query, string(r.kind), id, nullable(rec.SlugValue()), data, rec.IsPublished())
}

func (r *PostgresRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM content_records WHERE kind = $1 AND id = $2`, string(r.kind), id)
	if err != nil {
		return fmt.Errorf("content: delete %s: %w", r.kind, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository[T]) one(ctx context.Context, query string, args ...any) (Entry[T], error) {
	e, err := scanEntry[T](r.db.QueryRow(ctx, query, args...))
	if err == nil {
		return e, nil
	}
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return Entry[T]{}, ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return Entry[T]{}, ErrSlugTaken
	}
	return Entry[T]{}, fmt.Errorf("content: %s query: %w", r.kind, err)
}

func scanEntry[T any](row pgx.Row) (Entry[T], error) {
	var (
		e       Entry[T]
		raw     []byte
		created time.Time
		updated time.Time
	)
	if err := row.Scan(&e.ID, &raw, &created, &updated); err != nil {
		return Entry[T]{}, err
	}
	if err := json.Unmarshal(raw, &e.Data); err != nil {
		return Entry[T]{}, fmt.Errorf("content: decode record %s: %w", e.ID, err)
	}
	e.CreatedAt = created.UTC()
	e.UpdatedAt = updated.UTC()
	return e, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

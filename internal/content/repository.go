package content

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ListOptions filters List.
type ListOptions struct {
	PublishedOnly bool
	Limit         int
	Offset        int
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func (o ListOptions) limit() int {
	switch {
	case o.Limit <= 0:
		return defaultListLimit
	case o.Limit > maxListLimit:
		return maxListLimit
	}
	return o.Limit
}

// Repository persists one record type.
type Repository[T Record[T]] interface {
	List(ctx context.Context, opts ListOptions) ([]Entry[T], error)
	Get(ctx context.Context, id uuid.UUID) (Entry[T], error)
	GetBySlug(ctx context.Context, slug string) (Entry[T], error)
	Create(ctx context.Context, rec T) (Entry[T], error)
	Update(ctx context.Context, id uuid.UUID, rec T) (Entry[T], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// prepare normalizes and validates a record before any write.
func prepare[T Record[T]](rec T) (T, error) {
	rec = rec.Normalize()
	if err := rec.Validate(); err != nil {
		var zero T
		if !errors.Is(err, ErrInvalid) {
			err = fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		return zero, err
	}
	return rec, nil
}

// MemoryRepository keeps records in process memory. Used in tests and when
// no DATABASE_URL is configured.
type MemoryRepository[T Record[T]] struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Entry[T]
	now     func() time.Time
}

func NewMemoryRepository[T Record[T]]() *MemoryRepository[T] {
	return &MemoryRepository[T]{entries: make(map[uuid.UUID]Entry[T]), now: time.Now}
}

func (r *MemoryRepository[T]) List(_ context.Context, opts ListOptions) ([]Entry[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry[T], 0, len(r.entries))
	for _, e := range r.entries {
		if opts.PublishedOnly && !e.Data.IsPublished() {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if opts.Offset >= len(out) {
		return []Entry[T]{}, nil
	}
	out = out[max(opts.Offset, 0):]
	if len(out) > opts.limit() {
		out = out[:opts.limit()]
	}
	return out, nil
}

func (r *MemoryRepository[T]) Get(_ context.Context, id uuid.UUID) (Entry[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return Entry[T]{}, ErrNotFound
	}
	return e, nil
}

func (r *MemoryRepository[T]) GetBySlug(_ context.Context, slug string) (Entry[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if slug != "" && e.Data.SlugValue() == slug {
			return e, nil
		}
	}
	return Entry[T]{}, ErrNotFound
}

func (r *MemoryRepository[T]) Create(_ context.Context, rec T) (Entry[T], error) {
	rec, err := prepare(rec)
	if err != nil {
		return Entry[T]{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTakenLocked(rec.SlugValue(), uuid.Nil) {
		return Entry[T]{}, ErrSlugTaken
	}
	now := r.now().UTC()
	e := Entry[T]{ID: uuid.New(), CreatedAt: now, UpdatedAt: now, Data: rec}
	r.entries[e.ID] = e
	return e, nil
}

func (r *MemoryRepository[T]) Update(_ context.Context, id uuid.UUID, rec T) (Entry[T], error) {
	rec, err := prepare(rec)
	if err != nil {
		return Entry[T]{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return Entry[T]{}, ErrNotFound
	}
	if r.slugTakenLocked(rec.SlugValue(), id) {
		return Entry[T]{}, ErrSlugTaken
	}
	e.Data = rec
	e.UpdatedAt = r.now().UTC()
	r.entries[id] = e
	return e, nil
}

func (r *MemoryRepository[T]) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *MemoryRepository[T]) slugTakenLocked(slug string, self uuid.UUID) bool {
	if slug == "" {
		return false
	}
	for id, e := range r.entries {
		if id != self && e.Data.SlugValue() == slug {
			return true
		}
	}
	return false
}

package delivery

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/contractor-leads/internal/leads"
)

// MemoryQueue keeps queued leads in process memory. Useful for tests and
// local development only; entries do not survive a restart.
type MemoryQueue struct {
	mu      sync.Mutex
	entries []QueuedLead
	now     func() time.Time
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{now: time.Now}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, payload *leads.Payload) (QueuedLead, error) {
	if err := ctx.Err(); err != nil {
		return QueuedLead{}, err
	}
	entry := newQueuedLead(payload, q.now())
	q.mu.Lock()
	q.entries = append(q.entries, entry)
	q.mu.Unlock()
	return entry, nil
}

func (q *MemoryQueue) List(_ context.Context, limit int) ([]QueuedLead, error) {
	limit = normalizeLimit(limit)
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]QueuedLead, 0, min(limit, len(q.entries)))
	for i := len(q.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, q.entries[i])
	}
	return out, nil
}

func (q *MemoryQueue) Len(context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.entries)), nil
}

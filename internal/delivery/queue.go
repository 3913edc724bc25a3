package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/contractor-leads/internal/leads"
)

// DefaultQueueListLimit caps List when callers pass a non-positive limit.
const DefaultQueueListLimit = 50

// QueuedLead is a payload persisted locally after every remote tier failed.
type QueuedLead struct {
	ID       string         `json:"id"`
	QueuedAt time.Time      `json:"queuedAt"`
	Payload  *leads.Payload `json:"payload"`
}

// Queue is the local durable store of last resort. Enqueue must be atomic
// with respect to concurrent submitters.
type Queue interface {
	Enqueue(ctx context.Context, payload *leads.Payload) (QueuedLead, error)
	// List returns up to limit entries, most recent first.
	List(ctx context.Context, limit int) ([]QueuedLead, error)
	Len(ctx context.Context) (int64, error)
}

func newQueuedLead(payload *leads.Payload, now time.Time) QueuedLead {
	return QueuedLead{
		ID:       uuid.NewString(),
		QueuedAt: now.UTC(),
		Payload:  payload,
	}
}

func encodeQueuedLead(entry QueuedLead) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("delivery: encode queued lead: %w", err)
	}
	return data, nil
}

func decodeQueuedLead(data []byte) (QueuedLead, error) {
	var entry QueuedLead
	if err := json.Unmarshal(data, &entry); err != nil {
		return QueuedLead{}, fmt.Errorf("delivery: decode queued lead: %w", err)
	}
	return entry, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultQueueListLimit
	}
	return limit
}

// QueueStrategy adapts a Queue into the final delivery tier.
type QueueStrategy struct {
	queue Queue
}

// NewQueueStrategy wraps q.
func NewQueueStrategy(q Queue) *QueueStrategy {
	if q == nil {
		panic("delivery: queue required")
	}
	return &QueueStrategy{queue: q}
}

func (s *QueueStrategy) Name() string { return "queue" }

func (s *QueueStrategy) Attempt(ctx context.Context, payload *leads.Payload) Attempt {
	start := time.Now()
	entry, err := s.queue.Enqueue(ctx, payload)
	attempt := Attempt{Strategy: s.Name(), Duration: time.Since(start)}
	if err != nil {
		attempt.Err = err
		return attempt
	}
	attempt.Success = true
	attempt.Queued = true
	attempt.Message = "Form queued for processing"
	attempt.RemoteID = entry.ID
	return attempt
}

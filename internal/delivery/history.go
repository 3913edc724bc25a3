package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultHistoryLimit is how many submissions are retained for diagnostics.
const DefaultHistoryLimit = 10

// DefaultHistoryKey is the Redis list holding recent submissions.
const DefaultHistoryKey = "leads:history"

// Record is one diagnostic entry. Only the contact name is kept; no other
// personal data goes into history.
type Record struct {
	ServiceID   string    `json:"serviceId"`
	Success     bool      `json:"success"`
	Channel     string    `json:"channel,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	ContactName string    `json:"contactName,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// History is a bounded rolling log of submissions, most recent first.
type History interface {
	Append(ctx context.Context, rec Record) error
	Recent(ctx context.Context, n int) ([]Record, error)
}

// MemoryHistory is a mutex-guarded ring of the last limit records.
type MemoryHistory struct {
	mu      sync.Mutex
	limit   int
	records []Record
}

func NewMemoryHistory(limit int) *MemoryHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryHistory{limit: limit}
}

func (h *MemoryHistory) Append(_ context.Context, rec Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append([]Record{rec}, h.records...)
	if len(h.records) > h.limit {
		h.records = h.records[:h.limit]
	}
	return nil
}

func (h *MemoryHistory) Recent(_ context.Context, n int) ([]Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 || n > len(h.records) {
		n = len(h.records)
	}
	out := make([]Record, n)
	copy(out, h.records[:n])
	return out, nil
}

// RedisHistory keeps the log in a capped Redis list so every API replica
// shares it.
type RedisHistory struct {
	client *redis.Client
	key    string
	limit  int
}

func NewRedisHistory(client *redis.Client, key string, limit int) *RedisHistory {
	if client == nil {
		panic("delivery: redis client required")
	}
	if key == "" {
		key = DefaultHistoryKey
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &RedisHistory{client: client, key: key, limit: limit}
}

func (h *RedisHistory) Append(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("delivery: encode history record: %w", err)
	}
	_, err = h.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, h.key, data)
		pipe.LTrim(ctx, h.key, 0, int64(h.limit-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("delivery: append history: %w", err)
	}
	return nil
}

func (h *RedisHistory) Recent(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 || n > h.limit {
		n = h.limit
	}
	raw, err := h.client.LRange(ctx, h.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("delivery: read history: %w", err)
	}
	records := make([]Record, 0, len(raw))
	for _, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("delivery: decode history record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

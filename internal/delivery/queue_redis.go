package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/contractor-leads/internal/leads"
)

// DefaultQueueKey is the Redis list holding queued leads.
const DefaultQueueKey = "leads:queue"

// RedisQueue appends queued leads to a Redis list with RPUSH.
type RedisQueue struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if client == nil {
		panic("delivery: redis client required")
	}
	if key == "" {
		key = DefaultQueueKey
	}
	return &RedisQueue{client: client, key: key, now: time.Now}
}

func (q *RedisQueue) Enqueue(ctx context.Context, payload *leads.Payload) (QueuedLead, error) {
	entry := newQueuedLead(payload, q.now())
	data, err := encodeQueuedLead(entry)
	if err != nil {
		return QueuedLead{}, err
	}
	if err := q.client.RPush(ctx, q.key, data).Err(); err != nil {
		return QueuedLead{}, fmt.Errorf("delivery: push redis queue: %w", err)
	}
	return entry, nil
}

func (q *RedisQueue) List(ctx context.Context, limit int) ([]QueuedLead, error) {
	limit = normalizeLimit(limit)
	raw, err := q.client.LRange(ctx, q.key, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("delivery: list redis queue: %w", err)
	}
	entries := make([]QueuedLead, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		entry, err := decodeQueuedLead([]byte(raw[i]))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("delivery: redis queue length: %w", err)
	}
	return n, nil
}

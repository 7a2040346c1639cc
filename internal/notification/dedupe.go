package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stanstork/notifications/internal/repository"
)

// Deduper remembers which jobs already reached their recipient, so a job the
// substrate redelivers after a lost acknowledgement is not sent twice.
type Deduper interface {
	Seen(ctx context.Context, jobID string) (bool, error)
	Mark(ctx context.Context, jobID string) error
}

const dedupeKeyPrefix = "notifications:delivered:"

type RedisDeduper struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisDeduper(client redis.UniversalClient, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

func (d *RedisDeduper) Seen(ctx context.Context, jobID string) (bool, error) {
	n, err := d.client.Exists(ctx, dedupeKeyPrefix+jobID).Result()
	if err != nil {
		return false, redisErr("check delivery", err)
	}
	return n > 0, nil
}

func (d *RedisDeduper) Mark(ctx context.Context, jobID string) error {
	if err := d.client.Set(ctx, dedupeKeyPrefix+jobID, time.Now().UTC().Format(time.RFC3339), d.ttl).Err(); err != nil {
		return redisErr("record delivery", err)
	}
	return nil
}

func redisErr(op string, err error) error {
	return fmt.Errorf("%w: dedupe %s: %w", repository.ErrStorage, op, err)
}

type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]struct{})}
}

func (d *MemoryDeduper) Seen(_ context.Context, jobID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[jobID]
	return ok, nil
}

func (d *MemoryDeduper) Mark(_ context.Context, jobID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[jobID] = struct{}{}
	return nil
}

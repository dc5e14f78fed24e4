package push

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Deduper reports whether this is the first delivery attempt for a
// notification id.
type Deduper interface {
	FirstDelivery(ctx context.Context, id string) (bool, error)
}

// RedisDeduper shares the guard across instances.
type RedisDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisDeduper(rdb *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{rdb: rdb, ttl: ttl}
}

func (d *RedisDeduper) FirstDelivery(ctx context.Context, id string) (bool, error) {
	return d.rdb.SetNX(ctx, "push:sent:"+id, 1, d.ttl).Result()
}

// MemoryDeduper remembers the last max ids seen by this process.
type MemoryDeduper struct {
	mu    sync.Mutex
	max   int
	seen  map[string]struct{}
	order []string
}

func NewMemoryDeduper(max int) *MemoryDeduper {
	return &MemoryDeduper{max: max, seen: make(map[string]struct{}, max)}
}

func (d *MemoryDeduper) FirstDelivery(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return false, nil
	}

	d.seen[id] = struct{}{}
	d.order = append(d.order, id)
	if len(d.order) > d.max {
		delete(d.seen, d.order[0])
		d.order = d.order[1:]
	}
	return true, nil
}

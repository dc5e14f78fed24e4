package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisSource consumes change events republished on a Redis channel by a
// RedisRelay. It lets instances that cannot hold a LISTEN connection
// (e.g. behind a transaction pooler) follow the change feed.
type RedisSource struct {
	rdb     *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisSource(rdb *redis.Client, channel string, log *zap.Logger) *RedisSource {
	return &RedisSource{rdb: rdb, channel: channel, log: log}
}

func (s *RedisSource) Listen(ctx context.Context, emit func(ChangeEvent), ready func()) error {
	sub := s.rdb.Subscribe(ctx, s.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("realtime: subscribe %s: %w", s.channel, err)
	}
	s.log.Info("following redis change feed", zap.String("channel", s.channel))
	ready()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("realtime: redis subscription closed")
			}
			ev, err := ParseEvent([]byte(msg.Payload))
			if err != nil {
				s.log.Warn("dropping redis change message", zap.Error(err))
				continue
			}
			emit(ev)
		}
	}
}

// RedisRelay republishes hub events to Redis for RedisSource consumers.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	timeout time.Duration
	log     *zap.Logger
}

func NewRedisRelay(rdb *redis.Client, channel string, log *zap.Logger) *RedisRelay {
	return &RedisRelay{rdb: rdb, channel: channel, timeout: 2 * time.Second, log: log}
}

func (r *RedisRelay) Forward(ev ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		r.log.Error("encode change event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.rdb.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.log.Warn("relay change event",
			zap.String("table", ev.Table),
			zap.Error(err),
		)
	}
}

package realtime

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Handler func(ChangeEvent)

// Source produces change events until ctx is done or the connection
// drops. ready is called once the source is actually listening.
type Source interface {
	Listen(ctx context.Context, emit func(ChangeEvent), ready func()) error
}

type subscriber struct {
	filter Filter
	fn     Handler
}

// Hub fans events out to subscribers. Events are dispatched one at a time
// and every handler returns before the next event is delivered.
type Hub struct {
	mu     sync.RWMutex
	next   uint64
	subs   map[uint64]subscriber
	resync map[uint64]func()

	log *zap.Logger

	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		subs:       make(map[uint64]subscriber),
		resync:     make(map[uint64]func()),
		log:        log,
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// Subscribe registers fn for events matching f. The returned func removes
// the subscription and may be called more than once.
func (h *Hub) Subscribe(f Filter, fn Handler) func() {
	h.mu.Lock()
	h.next++
	id := h.next
	h.subs[id] = subscriber{filter: f, fn: fn}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// OnResync registers fn to run after the source reconnects, since events
// emitted while disconnected are lost.
func (h *Hub) OnResync(fn func()) func() {
	h.mu.Lock()
	h.next++
	id := h.next
	h.resync[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.resync, id)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish delivers ev to every matching subscriber, in subscription order.
func (h *Hub) Publish(ev ChangeEvent) {
	for _, s := range h.snapshot() {
		if s.filter.Match(ev) {
			h.call(ev, s.fn)
		}
	}
}

func (h *Hub) call(ev ChangeEvent, fn Handler) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("realtime handler panicked",
				zap.String("table", ev.Table),
				zap.String("kind", string(ev.Kind)),
				zap.Any("panic", r),
			)
		}
	}()
	fn(ev)
}

func (h *Hub) snapshot() []subscriber {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]uint64, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]subscriber, 0, len(ids))
	for _, id := range ids {
		out = append(out, h.subs[id])
	}
	return out
}

func (h *Hub) runResync() {
	h.mu.RLock()
	fns := make([]func(), 0, len(h.resync))
	for _, fn := range h.resync {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Run consumes src until ctx is cancelled, reconnecting with capped
// exponential backoff.
func (h *Hub) Run(ctx context.Context, src Source) {
	backoff := h.minBackoff
	connected := false

	for {
		started := time.Now()
		err := src.Listen(ctx, h.Publish, func() {
			if connected {
				h.log.Info("realtime source reconnected, resyncing")
				h.runResync()
			}
			connected = true
		})

		if ctx.Err() != nil {
			return
		}

		if time.Since(started) > time.Minute {
			backoff = h.minBackoff
		}

		h.log.Warn("realtime source stopped",
			zap.Error(err),
			zap.Duration("retry_in", backoff),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > h.maxBackoff {
			backoff = h.maxBackoff
		}
	}
}

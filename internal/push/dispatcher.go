package push

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/realtime"
)

// Dispatcher queues notifications for delivery on a single worker. A full
// queue drops the push; the notification row itself is already stored.
type Dispatcher struct {
	deliverer *Deliverer
	dedup     Deduper
	log       *zap.Logger
	timeout   time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan models.Notification
	wg     sync.WaitGroup
}

func NewDispatcher(d *Deliverer, dedup Deduper, size int, log *zap.Logger) *Dispatcher {
	if size <= 0 {
		size = 100
	}
	if log == nil {
		log = zap.NewNop()
	}
	if dedup == nil {
		dedup = NewMemoryDeduper(10000)
	}

	disp := &Dispatcher{
		deliverer: d,
		dedup:     dedup,
		log:       log,
		timeout:   15 * time.Second,
		queue:     make(chan models.Notification, size),
	}

	disp.wg.Add(1)
	go disp.worker()
	return disp
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	first, err := d.dedup.FirstDelivery(ctx, n.ID)
	if err != nil {
		d.log.Warn("push dedup unavailable, delivering anyway",
			zap.String("notification_id", n.ID),
			zap.Error(err),
		)
		first = true
	}
	if !first {
		return
	}

	res, err := d.deliverer.Deliver(ctx, n)
	if err != nil {
		d.log.Error("push delivery failed",
			zap.String("notification_id", n.ID),
			zap.String("recipient_id", n.RecipientID),
			zap.Error(err),
		)
		return
	}

	d.log.Debug("push delivery",
		zap.String("notification_id", n.ID),
		zap.String("result", string(res)),
	)
}

func (d *Dispatcher) Dispatch(n models.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	select {
	case d.queue <- n:
	default:
		d.log.Warn("push queue full, dropping", zap.String("notification_id", n.ID))
	}
}

// HandleEvent is a realtime handler: every inserted notification row is
// queued for push.
func (d *Dispatcher) HandleEvent(ev realtime.ChangeEvent) {
	if ev.Table != realtime.TableNotifications || ev.Kind != realtime.KindInsert {
		return
	}

	n, err := realtime.Decode[models.Notification](ev)
	if err != nil {
		d.log.Warn("undecodable notification event", zap.Error(err))
		return
	}
	d.Dispatch(n)
}

// Close stops accepting work and waits for the queue to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

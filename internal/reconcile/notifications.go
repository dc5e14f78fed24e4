package reconcile

import (
	"cmp"
	"context"
	"fmt"
	"sync"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/realtime"
)

// Notifications mirrors one recipient's notifications, newest first, and
// keeps the unread badge count.
type Notifications struct {
	mu          sync.RWMutex
	c           *Collection[models.Notification]
	unread      int
	recipientID string
	src         NotificationSource
}

func NewNotifications(src NotificationSource, recipientID string) *Notifications {
	return &Notifications{
		c: NewCollection(
			func(n models.Notification) string { return n.ID },
			// read never goes back to unread
			func(held, in models.Notification) bool { return held.IsRead && !in.IsRead },
			func(a, b models.Notification) int {
				if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
					return c
				}
				return cmp.Compare(b.ID, a.ID)
			},
		),
		recipientID: recipientID,
		src:         src,
	}
}

func (p *Notifications) FetchNotifications(ctx context.Context) ([]models.Notification, error) {
	p.mu.Lock()
	p.c.BeginFetch()
	p.mu.Unlock()

	rows, err := p.src.ListNotifications(ctx, p.recipientID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.c.EndFetch()
		return nil, fmt.Errorf("fetch notifications: %w", err)
	}

	p.c.Reset(rows)
	p.unread = len(p.c.Filter(func(n models.Notification) bool { return !n.IsRead }))
	return p.c.List(), nil
}

// HandleNew records a delivered notification. A second delivery of the
// same id replaces the first and does not count twice.
func (p *Notifications) HandleNew(n models.Notification) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.upsertLocked(n)
}

func (p *Notifications) Apply(ev realtime.ChangeEvent) (bool, error) {
	if ev.Table != realtime.TableNotifications {
		return false, realtime.ErrUnknownTable
	}

	row, err := realtime.Decode[models.Notification](ev)
	if err != nil {
		return false, err
	}
	if p.recipientID != "" && row.RecipientID != p.recipientID {
		return false, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Kind {
	case realtime.KindInsert, realtime.KindUpdate:
		return p.upsertLocked(row), nil
	case realtime.KindDelete:
		held, ok := p.c.Remove(row.ID)
		if ok && !held.IsRead {
			p.decrementLocked()
		}
		return ok, nil
	}
	return false, realtime.ErrUnknownKind
}

// MarkAsRead updates the store first, then flips the local flag. The
// count drops by one only if the notification was held unread.
func (p *Notifications) MarkAsRead(ctx context.Context, id string) error {
	if err := p.src.MarkNotificationRead(ctx, id, p.recipientID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	n, ok := p.c.Get(id)
	if !ok || n.IsRead {
		return nil
	}
	n.IsRead = true
	p.c.Upsert(n)
	p.decrementLocked()
	return nil
}

func (p *Notifications) UnreadCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.unread
}

func (p *Notifications) List() []models.Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.c.List()
}

func (p *Notifications) upsertLocked(n models.Notification) bool {
	held, existed := p.c.Get(n.ID)
	if !p.c.Upsert(n) {
		return false
	}

	wasUnread := existed && !held.IsRead
	switch {
	case !n.IsRead && !wasUnread:
		p.unread++
	case n.IsRead && wasUnread:
		p.decrementLocked()
	}
	return true
}

func (p *Notifications) decrementLocked() {
	if p.unread > 0 {
		p.unread--
	}
}

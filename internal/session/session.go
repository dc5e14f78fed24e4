// Package session ties the change-feed subscription and the local
// projections to the lifetime of one authenticated user (or, with an empty
// user id, to the lifetime of the process).
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/realtime"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/reconcile"
)

var ErrClosed = errors.New("session: closed")

const resyncTimeout = 15 * time.Second

// Source is the store of record the projections resync from.
type Source interface {
	reconcile.AppointmentSource
	reconcile.SuggestionSource
	reconcile.NotificationSource
}

// Feed is the subscription side of the realtime hub.
type Feed interface {
	Subscribe(f realtime.Filter, fn realtime.Handler) func()
	OnResync(fn func()) func()
}

// Session holds the projections of one user, or of the process when
// UserID is empty. Only a user session tracks notifications; only the
// process session tracks suggestions, which it serves to every user.
type Session struct {
	UserID string

	Appointments  *reconcile.Appointments
	Suggestions   *reconcile.Suggestions
	Notifications *reconcile.Notifications

	feed Feed
	log  *zap.Logger

	mu       sync.Mutex
	started  bool
	closed   bool
	teardown []func()

	// OnEvent, when set, runs after each event has been applied.
	OnEvent func(ev realtime.ChangeEvent, changed bool)
}

func New(src Source, feed Feed, userID string, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		UserID:       userID,
		Appointments: reconcile.NewAppointments(src),
		feed:         feed,
		log:          log.With(zap.String("session_user", userID)),
	}
	if userID != "" {
		s.Notifications = reconcile.NewNotifications(src, userID)
	} else {
		s.Suggestions = reconcile.NewSuggestions(src)
	}
	return s
}

// Start subscribes to the feed and then resyncs from the store. Events
// that land while the fetch is in flight win over the fetched snapshot.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true

	s.teardown = append(s.teardown, s.feed.Subscribe(
		realtime.Filter{Tables: []string{realtime.TableAppointments, realtime.TableSuggestions}},
		s.handle,
	))
	if s.Notifications != nil {
		s.teardown = append(s.teardown, s.feed.Subscribe(
			realtime.Filter{
				Tables:      []string{realtime.TableNotifications},
				RecipientID: s.UserID,
			},
			s.handle,
		))
	}
	s.teardown = append(s.teardown, s.feed.OnResync(func() {
		ctx, cancel := context.WithTimeout(context.Background(), resyncTimeout)
		defer cancel()
		if err := s.Resync(ctx); err != nil {
			s.log.Warn("resync after reconnect failed", zap.Error(err))
		}
	}))
	s.mu.Unlock()

	if err := s.Resync(ctx); err != nil {
		s.Close()
		return err
	}
	return nil
}

// Resync refetches appointments and notifications.
func (s *Session) Resync(ctx context.Context) error {
	if _, err := s.Appointments.FetchAll(ctx); err != nil {
		return fmt.Errorf("session resync: %w", err)
	}
	if s.Notifications != nil {
		if _, err := s.Notifications.FetchNotifications(ctx); err != nil {
			return fmt.Errorf("session resync: %w", err)
		}
	}
	return nil
}

// Close unsubscribes every handler. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, fn := range s.teardown {
		fn()
	}
	s.teardown = nil
}

func (s *Session) handle(ev realtime.ChangeEvent) {
	var (
		changed bool
		err     error
	)

	switch ev.Table {
	case realtime.TableAppointments:
		changed, err = s.Appointments.Apply(ev)
	case realtime.TableSuggestions:
		if s.Suggestions != nil {
			changed, err = s.Suggestions.Apply(ev)
		} else {
			// passed through to the subscriber untouched
			changed = true
		}
	case realtime.TableNotifications:
		if s.Notifications != nil {
			changed, err = s.Notifications.Apply(ev)
		}
	}

	if err != nil {
		s.log.Warn("dropping change event",
			zap.String("table", ev.Table),
			zap.String("kind", string(ev.Kind)),
			zap.Error(err),
		)
		return
	}

	if s.OnEvent != nil {
		s.OnEvent(ev, changed)
	}
}

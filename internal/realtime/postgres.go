package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const loadTimeout = 5 * time.Second

// PGSource listens on a Postgres NOTIFY channel fed by the change
// triggers installed by the migrations. Notifications carry only the row
// id; rows are loaded through loader before they are emitted.
type PGSource struct {
	url     string
	channel string
	loader  Loader
	log     *zap.Logger
}

func NewPGSource(url, channel string, loader Loader, log *zap.Logger) *PGSource {
	return &PGSource{url: url, channel: channel, loader: loader, log: log}
}

func (s *PGSource) Listen(ctx context.Context, emit func(ChangeEvent), ready func()) error {
	conn, err := pgx.Connect(ctx, s.url)
	if err != nil {
		return fmt.Errorf("realtime: connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{s.channel}.Sanitize()); err != nil {
		return fmt.Errorf("realtime: listen %s: %w", s.channel, err)
	}
	s.log.Info("listening for changes", zap.String("channel", s.channel))
	ready()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("realtime: wait: %w", err)
		}

		ev, err := ParseEvent([]byte(n.Payload))
		if err != nil {
			s.log.Warn("dropping change notification", zap.Error(err))
			continue
		}

		if ev, ok := s.hydrate(ctx, ev); ok {
			emit(ev)
		}
	}
}

func (s *PGSource) hydrate(ctx context.Context, ev ChangeEvent) (ChangeEvent, bool) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	ev, err := Hydrate(ctx, ev, s.loader)
	switch {
	case err == nil:
		return ev, true
	case errors.Is(err, ErrRowGone):
		s.log.Debug("row gone before load",
			zap.String("table", ev.Table),
			zap.String("id", ev.ID),
		)
	default:
		s.log.Warn("dropping change notification",
			zap.String("table", ev.Table),
			zap.String("id", ev.ID),
			zap.Error(err),
		)
	}
	return ev, false
}

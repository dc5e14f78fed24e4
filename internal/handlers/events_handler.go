package handlers

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/middleware"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/realtime"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/session"
)

const (
	eventBuffer    = 64
	eventKeepAlive = 25 * time.Second
)

// EventFrame is one SSE "change" frame.
type EventFrame struct {
	Type        realtime.Kind   `json:"type"`
	Table       string          `json:"table"`
	New         json.RawMessage `json:"new,omitempty"`
	Old         json.RawMessage `json:"old,omitempty"`
	UnreadCount int             `json:"unread_count"`
}

// EventsHandler streams the caller's change feed. Each connection owns a
// session that is closed when the client goes away.
type EventsHandler struct {
	src       session.Source
	feed      session.Feed
	log       *zap.Logger
	keepAlive time.Duration
}

func NewEventsHandler(src session.Source, feed session.Feed, log *zap.Logger) *EventsHandler {
	return &EventsHandler{
		src:       src,
		feed:      feed,
		log:       log,
		keepAlive: eventKeepAlive,
	}
}

func (h *EventsHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	sess := session.New(h.src, h.feed, userID, h.log)
	frames := make(chan EventFrame, eventBuffer)

	sess.OnEvent = func(ev realtime.ChangeEvent, changed bool) {
		if !changed {
			return
		}
		f := EventFrame{
			Type:        ev.Kind,
			Table:       ev.Table,
			New:         ev.New,
			Old:         ev.Old,
			UnreadCount: sess.Notifications.UnreadCount(),
		}
		select {
		case frames <- f:
		default:
			h.log.Warn("event stream backlog full, dropping frame",
				zap.String("user_id", userID),
				zap.String("table", ev.Table),
			)
		}
	}

	if err := sess.Start(ctx); err != nil {
		h.log.Error("event session start failed", zap.String("user_id", userID), zap.Error(err))
		httperr.FromError(c, err)
		return
	}
	defer sess.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("ready", gin.H{"unread_count": sess.Notifications.UnreadCount()})
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case f := <-frames:
			c.SSEvent("change", f)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"unread_count": sess.Notifications.UnreadCount()})
			return true
		}
	})
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/realtime"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/reconcile"
)

// gin's Stream needs a CloseNotifier, which ResponseRecorder is not.
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.closed }

func notificationEvent(t *testing.T, n models.Notification) realtime.ChangeEvent {
	t.Helper()
	raw, err := json.Marshal(n)
	require.NoError(t, err)
	return realtime.ChangeEvent{Kind: realtime.KindInsert, Table: realtime.TableNotifications, New: raw}
}

func TestEvents_StreamsOwnNotificationsWithUnreadCount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := &stubRepo{notifications: []models.Notification{
		{ID: "old", RecipientID: "coord-1", CreatedAt: start},
	}}
	hub := realtime.NewHub(zap.NewNop())
	h := NewEventsHandler(repo, hub, zap.NewNop())

	r := gin.New()
	r.GET("/api/events", as("coord-1", domain.RoleCoordinator), h.Stream)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(w, req)
	}()

	require.Eventually(t, func() bool { return hub.Subscribers() > 0 }, time.Second, 5*time.Millisecond)

	hub.Publish(notificationEvent(t, models.Notification{ID: "other", RecipientID: "coord-2", CreatedAt: end}))
	hub.Publish(notificationEvent(t, models.Notification{ID: "fresh", RecipientID: "coord-1", CreatedAt: end}))

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after the client went away")
	}

	body := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, body, "event:ready")
	assert.Contains(t, body, `"unread_count":1`)
	assert.Contains(t, body, "event:change")
	assert.Contains(t, body, `"unread_count":2`)
	assert.Contains(t, body, `"fresh"`)
	assert.NotContains(t, body, `"other"`)
	assert.Equal(t, 1, strings.Count(body, "event:change"))

	assert.Zero(t, hub.Subscribers())
}

func TestDashboard_CountsFromProjection(t *testing.T) {
	gin.SetMode(gin.TestMode)

	today := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	repo := &stubRepo{
		apps: []models.Appointment{
			{ID: "a", Status: "pending", StartTime: today, EndTime: today.Add(time.Hour)},
			{ID: "b", Status: "confirmed", StartTime: today.Add(2 * time.Hour), EndTime: today.Add(3 * time.Hour)},
			{ID: "c", Status: "cancelled", StartTime: today.Add(4 * time.Hour), EndTime: today.Add(5 * time.Hour)},
			{ID: "d", Status: "confirmed", StartTime: today.AddDate(0, 0, 1), EndTime: today.AddDate(0, 0, 1).Add(time.Hour)},
		},
		notifications: []models.Notification{
			{ID: "n1", RecipientID: "mgr-1"},
			{ID: "n2", RecipientID: "mgr-1", IsRead: true},
		},
	}

	proj := reconcile.NewAppointments(repo)
	_, err := proj.FetchAll(context.Background())
	require.NoError(t, err)

	h := NewDashboardHandler(proj, repo, "UTC")
	h.now = func() time.Time { return today }

	r := gin.New()
	r.GET("/api/dashboard", as("mgr-1", domain.RoleManager), h.Get)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Pending     int `json:"pending"`
		Confirmed   int `json:"confirmed"`
		UnreadCount int `json:"unread_count"`
		Today       []struct {
			ID string `json:"id"`
		} `json:"today"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

	assert.Equal(t, 1, got.Pending)
	assert.Equal(t, 2, got.Confirmed)
	assert.Equal(t, 1, got.UnreadCount)
	require.Len(t, got.Today, 2)
	assert.Equal(t, "a", got.Today[0].ID)
	assert.Equal(t, "b", got.Today[1].ID)
}

func TestEvents_MarkReadLowersUnreadCount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := &stubRepo{}
	hub := realtime.NewHub(zap.NewNop())
	h := NewEventsHandler(repo, hub, zap.NewNop())

	r := gin.New()
	r.GET("/api/events", as("coord-1", domain.RoleCoordinator), h.Stream)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(w, req)
	}()

	require.Eventually(t, func() bool { return hub.Subscribers() > 0 }, time.Second, 5*time.Millisecond)

	fresh := models.Notification{ID: "fresh", RecipientID: "coord-1", CreatedAt: end}
	hub.Publish(notificationEvent(t, fresh))

	fresh.IsRead = true
	read := notificationEvent(t, fresh)
	read.Kind = realtime.KindUpdate
	hub.Publish(read)

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after the client went away")
	}

	body := w.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event:change"))
	raised := strings.Index(body, `"unread_count":1`)
	require.GreaterOrEqual(t, raised, 0)
	assert.Greater(t, strings.LastIndex(body, `"unread_count":0`), raised)
}

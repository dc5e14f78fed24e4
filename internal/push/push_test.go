package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/realtime"
)

const webSub = `{"endpoint":"https://push.example/abc","keys":{"p256dh":"BKey","auth":"secret"}}`

func TestParseToken(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind TargetKind
		wantErr  error
	}{
		{"empty", "  ", "", ErrNoToken},
		{"expo token", "ExponentPushToken[xyz]", TargetExpo, nil},
		{"web subscription", webSub, TargetWebPush, nil},
		{"no endpoint", `{"keys":{"p256dh":"a","auth":"b"}}`, "", ErrNoEndpoint},
		{"missing keys", `{"endpoint":"https://push.example/abc"}`, "", ErrInvalidSubscription},
		{"broken json", `{"endpoint":`, "", ErrInvalidSubscription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseToken(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, got.Kind)
		})
	}
}

func TestValidateToken(t *testing.T) {
	assert.NoError(t, ValidateToken(webSub))
	assert.NoError(t, ValidateToken("ExponentPushToken[xyz]"))
	assert.ErrorIs(t, ValidateToken(""), ErrInvalidSubscription)
	assert.ErrorIs(t, ValidateToken(`{"keys":{}}`), ErrInvalidSubscription)
}

func TestPayloadShape(t *testing.T) {
	id := "a1"
	b, err := json.Marshal(PayloadFor(models.Notification{Title: "New", Body: "Board", AppointmentID: &id}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"New","body":"Board","data":{"appointmentId":"a1"}}`, string(b))

	b, err = json.Marshal(PayloadFor(models.Notification{Title: "t", Body: "b"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"t","body":"b","data":{"appointmentId":null}}`, string(b))
}

// ======================================================
// Deliverer
// ======================================================

type memTokens struct {
	tokens  map[string]string
	cleared []string
}

func (m *memTokens) PushToken(_ context.Context, id string) (string, error) {
	return m.tokens[id], nil
}

func (m *memTokens) ClearPushToken(_ context.Context, id string) error {
	m.cleared = append(m.cleared, id)
	delete(m.tokens, id)
	return nil
}

type fakeSender struct {
	err  error
	sent []Target
}

func (f *fakeSender) Send(_ context.Context, t Target, _ Payload) error {
	f.sent = append(f.sent, t)
	return f.err
}

func TestDeliverer(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		router      func(s Sender) Sender
		sendErr     error
		want        Result
		wantErr     bool
		wantCleared bool
	}{
		{name: "no token", token: "", want: ResultSkipped},
		{name: "no endpoint", token: `{"keys":{"p256dh":"a","auth":"b"}}`, want: ResultSkipped},
		{name: "sent", token: "ExponentPushToken[x]", want: ResultSent},
		{name: "gone clears token", token: "ExponentPushToken[x]", sendErr: ErrGone, want: ResultExpired, wantCleared: true},
		{name: "other failure", token: "ExponentPushToken[x]", sendErr: errors.New("503"), wantErr: true},
		{
			name:   "web push not configured",
			token:  webSub,
			router: func(s Sender) Sender { return Router{Expo: s} },
			want:   ResultSkipped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &memTokens{tokens: map[string]string{"u1": tt.token}}
			sender := &fakeSender{err: tt.sendErr}

			var s Sender = sender
			if tt.router != nil {
				s = tt.router(sender)
			}

			res, err := NewDeliverer(tokens, s, nil).Deliver(context.Background(), models.Notification{ID: "n1", RecipientID: "u1"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)

			if tt.wantCleared {
				assert.Equal(t, []string{"u1"}, tokens.cleared)
			} else {
				assert.Empty(t, tokens.cleared)
			}
		})
	}
}

// ======================================================
// Senders
// ======================================================

func TestExpoSender(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		anyErr  bool
	}{
		{"ok", http.StatusOK, `{"data":{"status":"ok"}}`, nil, false},
		{"device not registered", http.StatusOK, `{"data":{"status":"error","message":"gone","details":{"error":"DeviceNotRegistered"}}}`, ErrGone, true},
		{"ticket error", http.StatusOK, `{"data":{"status":"error","message":"too big"}}`, nil, true},
		{"http 410", http.StatusGone, ``, ErrGone, true},
		{"http 500", http.StatusInternalServerError, `boom`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got expoMessage
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(b, &got)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewExpoSender(srv.URL, srv.Client()).Send(
				context.Background(),
				Target{Kind: TargetExpo, Token: "ExponentPushToken[x]"},
				Payload{Title: "t", Body: "b"},
			)

			assert.Equal(t, "ExponentPushToken[x]", got.To)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func testSubscription(t *testing.T, endpoint string) *webpush.Subscription {
	t.Helper()

	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	return &webpush.Subscription{
		Endpoint: endpoint,
		Keys: webpush.Keys{
			P256dh: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(auth),
		},
	}
}

func TestWebPushSender(t *testing.T) {
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	for _, tc := range []struct {
		status  int
		wantErr error
	}{
		{http.StatusCreated, nil},
		{http.StatusGone, ErrGone},
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		s := NewWebPushSender("mailto:ops@example.org", pub, priv, srv.Client())
		err := s.Send(context.Background(),
			Target{Kind: TargetWebPush, Web: testSubscription(t, srv.URL)},
			Payload{Title: "t", Body: "b"},
		)
		srv.Close()

		if tc.wantErr == nil {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, tc.wantErr)
		}
	}
}

// ======================================================
// Dispatcher
// ======================================================

func TestDispatcher_DeliversOncePerNotification(t *testing.T) {
	tokens := &memTokens{tokens: map[string]string{"u1": "ExponentPushToken[x]"}}
	sender := &fakeSender{}
	d := NewDispatcher(NewDeliverer(tokens, sender, nil), NewMemoryDeduper(10), 10, nil)

	row, _ := json.Marshal(models.Notification{ID: "n1", RecipientID: "u1"})
	ev := realtime.ChangeEvent{Kind: realtime.KindInsert, Table: realtime.TableNotifications, New: row}

	d.HandleEvent(ev)
	d.HandleEvent(ev)
	d.Close()

	assert.Len(t, sender.sent, 1)
}

func TestMemoryDeduper_Evicts(t *testing.T) {
	d := NewMemoryDeduper(2)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		first, err := d.FirstDelivery(ctx, id)
		require.NoError(t, err)
		assert.True(t, first)
	}

	again, _ := d.FirstDelivery(ctx, "c")
	assert.False(t, again)

	evicted, _ := d.FirstDelivery(ctx, "a")
	assert.True(t, evicted)
}

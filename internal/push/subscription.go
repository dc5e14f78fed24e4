package push

import (
	"encoding/json"
	"errors"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
)

var (
	ErrInvalidSubscription = httperr.ErrBusiness("invalid_push_subscription")

	ErrNoToken    = errors.New("push: recipient has no push token")
	ErrNoEndpoint = errors.New("push: subscription has no endpoint")
)

type TargetKind string

const (
	TargetWebPush TargetKind = "webpush"
	TargetExpo    TargetKind = "expo"
)

// Target is a parsed profiles.push_token: either a Web Push subscription
// stored as JSON, or a native platform token.
type Target struct {
	Kind  TargetKind
	Web   *webpush.Subscription
	Token string
}

// ParseToken interprets a stored push token. A JSON value must be a Web
// Push subscription {endpoint, keys: {p256dh, auth}}; anything else is a
// platform token.
func ParseToken(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, ErrNoToken
	}

	if !strings.HasPrefix(raw, "{") {
		return Target{Kind: TargetExpo, Token: raw}, nil
	}

	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return Target{}, ErrInvalidSubscription
	}
	if sub.Endpoint == "" {
		return Target{}, ErrNoEndpoint
	}
	if sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return Target{}, ErrInvalidSubscription
	}

	return Target{Kind: TargetWebPush, Web: &sub}, nil
}

// ValidateToken is the check applied before a token is stored.
func ValidateToken(raw string) error {
	_, err := ParseToken(raw)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNoToken), errors.Is(err, ErrNoEndpoint):
		return ErrInvalidSubscription
	default:
		return err
	}
}

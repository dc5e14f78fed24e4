package push

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

// TokenStore reads and clears profiles.push_token.
type TokenStore interface {
	PushToken(ctx context.Context, profileID string) (string, error)
	ClearPushToken(ctx context.Context, profileID string) error
}

type Result string

const (
	ResultSent    Result = "sent"
	ResultSkipped Result = "skipped"
	ResultExpired Result = "expired"
)

type Deliverer struct {
	tokens TokenStore
	sender Sender
	log    *zap.Logger
}

func NewDeliverer(tokens TokenStore, sender Sender, log *zap.Logger) *Deliverer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Deliverer{tokens: tokens, sender: sender, log: log}
}

// Deliver pushes n to its recipient's device. A recipient without a token
// or without an endpoint is skipped; a gone subscription clears the stored
// token and is not an error. Failures are returned, never retried.
func (d *Deliverer) Deliver(ctx context.Context, n models.Notification) (Result, error) {
	raw, err := d.tokens.PushToken(ctx, n.RecipientID)
	if err != nil {
		return "", fmt.Errorf("push: load token: %w", err)
	}

	target, err := ParseToken(raw)
	switch {
	case errors.Is(err, ErrNoToken), errors.Is(err, ErrNoEndpoint):
		return ResultSkipped, nil
	case err != nil:
		return "", err
	}

	err = d.sender.Send(ctx, target, PayloadFor(n))
	switch {
	case err == nil:
		return ResultSent, nil
	case errors.Is(err, ErrNotConfigured):
		return ResultSkipped, nil
	case errors.Is(err, ErrGone):
		if cerr := d.tokens.ClearPushToken(ctx, n.RecipientID); cerr != nil {
			return "", fmt.Errorf("push: clear expired token: %w", cerr)
		}
		d.log.Info("cleared expired push subscription",
			zap.String("recipient_id", n.RecipientID),
			zap.String("target", string(target.Kind)),
		)
		return ResultExpired, nil
	default:
		return "", err
	}
}

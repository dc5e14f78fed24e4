package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
)

var (
	// ErrGone means the push service no longer knows the subscription.
	ErrGone = errors.New("push: subscription gone")

	ErrNotConfigured = errors.New("push: no sender configured for target")
)

type Sender interface {
	Send(ctx context.Context, t Target, p Payload) error
}

// ======================================================
// WEB PUSH
// ======================================================

type WebPushSender struct {
	opts webpush.Options
}

func NewWebPushSender(subject, publicKey, privateKey string, client *http.Client) *WebPushSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebPushSender{opts: webpush.Options{
		HTTPClient:      client,
		Subscriber:      subject,
		VAPIDPublicKey:  publicKey,
		VAPIDPrivateKey: privateKey,
		TTL:             86400,
	}}
}

func (s *WebPushSender) Send(ctx context.Context, t Target, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	opts := s.opts
	resp, err := webpush.SendNotificationWithContext(ctx, body, t.Web, &opts)
	if err != nil {
		return fmt.Errorf("push: web push: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// ======================================================
// EXPO
// ======================================================

type ExpoSender struct {
	url    string
	client *http.Client
}

func NewExpoSender(url string, client *http.Client) *ExpoSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ExpoSender{url: url, client: client}
}

type expoMessage struct {
	To    string      `json:"to"`
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Data  PayloadData `json:"data"`
	Sound string      `json:"sound,omitempty"`
}

type expoResponse struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Details struct {
			Error string `json:"error"`
		} `json:"details"`
	} `json:"data"`
}

func (s *ExpoSender) Send(ctx context.Context, t Target, p Payload) error {
	body, err := json.Marshal(expoMessage{
		To:    t.Token,
		Title: p.Title,
		Body:  p.Body,
		Data:  p.Data,
		Sound: "default",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push: expo: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	var out expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("push: expo response: %w", err)
	}
	if out.Data.Status == "error" {
		if out.Data.Details.Error == "DeviceNotRegistered" {
			return ErrGone
		}
		return fmt.Errorf("push: expo: %s", out.Data.Message)
	}
	return nil
}

// ======================================================
// ROUTING
// ======================================================

// Router picks the sender for a target's kind. A nil sender means the
// kind is not configured.
type Router struct {
	Web  Sender
	Expo Sender
}

func (r Router) Send(ctx context.Context, t Target, p Payload) error {
	var s Sender
	switch t.Kind {
	case TargetWebPush:
		s = r.Web
	case TargetExpo:
		s = r.Expo
	}
	if s == nil {
		return ErrNotConfigured
	}
	return s.Send(ctx, t, p)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusGone {
		return ErrGone
	}
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push: endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

type Kind string

const (
	KindInsert Kind = "INSERT"
	KindUpdate Kind = "UPDATE"
	KindDelete Kind = "DELETE"
)

const (
	TableAppointments  = "appointments"
	TableSuggestions   = "appointment_suggestions"
	TableNotifications = "notifications"
)

var (
	ErrUnknownKind  = errors.New("realtime: unknown event kind")
	ErrUnknownTable = errors.New("realtime: unwatched table")
	ErrEmptyRow     = errors.New("realtime: event carries no row")
	ErrRowGone      = errors.New("realtime: row no longer exists")
)

// ChangeEvent is one row-level change. The store's notify trigger sends
// only the envelope {"type", "table", "id", "recipient_id"}; Hydrate
// fills in the row images before the event reaches the hub.
type ChangeEvent struct {
	Kind      Kind            `json:"type"`
	Table     string          `json:"table"`
	ID        string          `json:"id,omitempty"`
	Recipient string          `json:"recipient_id,omitempty"`
	New       json.RawMessage `json:"new,omitempty"`
	Old       json.RawMessage `json:"old,omitempty"`
}

// Loader reads the current image of one row. It returns ErrRowGone when
// the row has been deleted.
type Loader interface {
	LoadRow(ctx context.Context, table, id string) (json.RawMessage, error)
}

// Hydrate completes an envelope-only event. Inserts and updates get the
// row's current image; deletes get a minimal old image built from the
// envelope. Events that already carry their row pass through. An insert
// or update whose row is gone reports ErrRowGone: its delete follows.
func Hydrate(ctx context.Context, ev ChangeEvent, l Loader) (ChangeEvent, error) {
	if !emptyRow(ev.Row()) {
		return ev, nil
	}
	if ev.ID == "" {
		return ev, ErrEmptyRow
	}

	if ev.Kind == KindDelete {
		old := map[string]string{"id": ev.ID}
		if ev.Recipient != "" {
			old["recipient_id"] = ev.Recipient
		}
		raw, err := json.Marshal(old)
		if err != nil {
			return ev, err
		}
		ev.Old = raw
		return ev, nil
	}

	row, err := l.LoadRow(ctx, ev.Table, ev.ID)
	if err != nil {
		return ev, fmt.Errorf("realtime: load %s %s: %w", ev.Table, ev.ID, err)
	}
	ev.New = row
	return ev, nil
}

func ParseEvent(payload []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("realtime: decode event: %w", err)
	}

	switch ev.Kind {
	case KindInsert, KindUpdate, KindDelete:
	default:
		return ChangeEvent{}, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}

	switch ev.Table {
	case TableAppointments, TableSuggestions, TableNotifications:
	default:
		return ChangeEvent{}, fmt.Errorf("%w: %q", ErrUnknownTable, ev.Table)
	}

	return ev, nil
}

// Row is the row image the event is about: the old image for deletes,
// the new one otherwise.
func (e ChangeEvent) Row() json.RawMessage {
	if e.Kind == KindDelete {
		return e.Old
	}
	return e.New
}

// Decode unmarshals the event's row image into T.
func Decode[T any](e ChangeEvent) (T, error) {
	var v T
	row := e.Row()
	if emptyRow(row) {
		return v, ErrEmptyRow
	}
	if err := json.Unmarshal(row, &v); err != nil {
		return v, fmt.Errorf("realtime: decode %s row: %w", e.Table, err)
	}
	return v, nil
}

// RecipientID is the recipient of a notifications event, from the
// envelope or else the row, or "".
func (e ChangeEvent) RecipientID() string {
	if e.Table != TableNotifications {
		return ""
	}
	if e.Recipient != "" {
		return e.Recipient
	}
	var row struct {
		RecipientID string `json:"recipient_id"`
	}
	if err := json.Unmarshal(e.Row(), &row); err != nil {
		return ""
	}
	return row.RecipientID
}

func emptyRow(row json.RawMessage) bool {
	return len(row) == 0 || bytes.Equal(row, []byte("null"))
}

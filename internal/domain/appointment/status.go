package appointment

import "github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"

// ===============================
// Appointment Type / Status
// ===============================

type Type string

const (
	TypeMinistry Type = "ministry"
	TypePatient  Type = "patient"
	TypeExternal Type = "external"
)

func (t Type) Valid() bool {
	switch t {
	case TypeMinistry, TypePatient, TypeExternal:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusSuggested Status = "suggested"
	StatusCancelled Status = "cancelled"
)

// Blocking reports whether an appointment in this status can collide with
// another booking. Rejected and cancelled rows never do.
func (s Status) Blocking() bool {
	return s != StatusRejected && s != StatusCancelled
}

func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

type Role string

const (
	RoleCoordinator Role = "coordinator"
	RoleManager     Role = "manager"
)

// ===============================
// Validations
// ===============================

func CanReview(current Status) error {
	if current != StatusPending && current != StatusSuggested {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanSuggest(current Status) error {
	return CanReview(current)
}

func CanResolveSuggestion(current Status) error {
	if current != StatusSuggested {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanCancel(current Status) error {
	if current.Terminal() {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// InitialStatus picks the status of a new booking. Ministry meetings with
// no overlap at all are confirmed on the spot.
func InitialStatus(t Type, outcome Outcome) Status {
	if t == TypeMinistry && outcome == OutcomeNone {
		return StatusConfirmed
	}
	return StatusPending
}

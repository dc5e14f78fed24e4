package appointment

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	Actor Actor

	Title     string
	Type      domain.Type
	StartTime time.Time
	EndTime   time.Time
	Location  *string
	Notes     *string

	AcknowledgeConflicts bool
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo  domain.Repository
	audit Auditor
	log   *zap.Logger
}

func NewCreateAppointment(
	repo domain.Repository,
	audit Auditor,
	log *zap.Logger,
) *CreateAppointment {
	return &CreateAppointment{
		repo:  repo,
		audit: audit,
		log:   log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Input
	// --------------------------------------------------
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, httperr.ErrBusiness("invalid_title")
	}
	if !in.Type.Valid() {
		return nil, httperr.ErrBusiness("invalid_type")
	}
	if err := (domain.Interval{Start: in.StartTime, End: in.EndTime}).Validate(); err != nil {
		return nil, err
	}

	var ap *models.Appointment
	var outcome domain.Outcome

	err := uc.repo.Transaction(ctx, func(ctx context.Context, tx domain.Repository) error {

		// --------------------------------------------------
		// 2. Conflicts, serialised with other bookings
		// --------------------------------------------------
		if err := tx.LockSchedule(ctx); err != nil {
			return err
		}

		res, err := domain.NewEvaluator(tx, uc.log).Evaluate(ctx, in.StartTime, in.EndTime, "")
		if err != nil {
			return err
		}
		if err := gate(res, in.AcknowledgeConflicts); err != nil {
			return err
		}
		outcome = res.Outcome

		// --------------------------------------------------
		// 3. Appointment
		// --------------------------------------------------
		ap = &models.Appointment{
			Title:     title,
			Type:      string(in.Type),
			Status:    string(domain.InitialStatus(in.Type, res.Outcome)),
			StartTime: in.StartTime.UTC(),
			EndTime:   in.EndTime.UTC(),
			Location:  in.Location,
			Notes:     in.Notes,
			CreatedBy: in.Actor.ID,
		}
		if err := tx.CreateAppointment(ctx, ap); err != nil {
			return err
		}

		// --------------------------------------------------
		// 4. Managers are told
		// --------------------------------------------------
		managers, err := managerIDs(ctx, tx)
		if err != nil {
			return err
		}

		kind := domain.NotifNewAppointment
		if ap.Status == string(domain.StatusConfirmed) {
			kind = domain.NotifMinistryAutoConfirmed
		}
		return tx.CreateNotifications(ctx, domain.NotificationsFor(kind, ap, in.Actor.ID, managers...))
	})
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 5. Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		ActorID:  in.Actor.ID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: ap.ID,
		Metadata: map[string]any{
			"status":  ap.Status,
			"outcome": outcome,
		},
	})

	return ap, nil
}

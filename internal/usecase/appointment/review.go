package appointment

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

// ReviewAppointment is the manager's confirm/reject decision on a pending
// or suggested appointment.
type ReviewAppointment struct {
	repo  domain.Repository
	audit Auditor
	log   *zap.Logger
}

func NewReviewAppointment(
	repo domain.Repository,
	audit Auditor,
	log *zap.Logger,
) *ReviewAppointment {
	return &ReviewAppointment{
		repo:  repo,
		audit: audit,
		log:   log,
	}
}

// Confirm re-checks the slot. A confirmed ministry overlap refuses the
// confirmation; other overlaps need acknowledging.
func (uc *ReviewAppointment) Confirm(
	ctx context.Context,
	actor Actor,
	appointmentID string,
	acknowledged bool,
) (*models.Appointment, error) {

	var ap *models.Appointment

	err := uc.repo.Transaction(ctx, func(ctx context.Context, tx domain.Repository) error {
		if err := tx.LockSchedule(ctx); err != nil {
			return err
		}

		var err error
		ap, err = tx.GetAppointment(ctx, appointmentID)
		if err != nil {
			return err
		}
		if err := domain.CanReview(domain.Status(ap.Status)); err != nil {
			return err
		}

		res, err := domain.NewEvaluator(tx, uc.log).Evaluate(ctx, ap.StartTime, ap.EndTime, ap.ID)
		if err != nil {
			return err
		}
		if err := gate(res, acknowledged); err != nil {
			return err
		}

		if err := domain.Confirm(ap, actor.ID, now()); err != nil {
			return err
		}
		return uc.finish(ctx, tx, ap, actor, domain.NotifAppointmentConfirmed)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  actor.ID,
		Action:   "appointment_confirmed",
		Entity:   "appointment",
		EntityID: ap.ID,
	})

	return ap, nil
}

func (uc *ReviewAppointment) Reject(
	ctx context.Context,
	actor Actor,
	appointmentID string,
) (*models.Appointment, error) {

	var ap *models.Appointment

	err := uc.repo.Transaction(ctx, func(ctx context.Context, tx domain.Repository) error {
		var err error
		ap, err = tx.GetAppointment(ctx, appointmentID)
		if err != nil {
			return err
		}

		if err := domain.Reject(ap, actor.ID, now()); err != nil {
			return err
		}
		return uc.finish(ctx, tx, ap, actor, domain.NotifAppointmentRejected)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  actor.ID,
		Action:   "appointment_rejected",
		Entity:   "appointment",
		EntityID: ap.ID,
	})

	return ap, nil
}

// finish closes any open suggestion, persists the decision and tells the
// creator.
func (uc *ReviewAppointment) finish(
	ctx context.Context,
	tx domain.Repository,
	ap *models.Appointment,
	actor Actor,
	kind domain.NotificationType,
) error {
	if err := tx.DeactivateSuggestions(ctx, ap.ID); err != nil {
		return err
	}
	if err := tx.UpdateAppointment(ctx, ap); err != nil {
		return err
	}
	return tx.CreateNotifications(ctx, domain.NotificationsFor(kind, ap, actor.ID, ap.CreatedBy))
}

package appointment

import (
	"context"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

// ResolveSuggestion is the creator's answer to a manager's alternative.
type ResolveSuggestion struct {
	repo  domain.Repository
	audit Auditor
	log   *zap.Logger
}

func NewResolveSuggestion(
	repo domain.Repository,
	audit Auditor,
	log *zap.Logger,
) *ResolveSuggestion {
	return &ResolveSuggestion{
		repo:  repo,
		audit: audit,
		log:   log,
	}
}

// Accept moves the appointment to the suggested slot and confirms it.
// The slot is checked again because the schedule may have changed since
// the suggestion was made.
func (uc *ResolveSuggestion) Accept(
	ctx context.Context,
	actor Actor,
	suggestionID string,
	acknowledged bool,
) (*models.Appointment, error) {

	var ap *models.Appointment

	err := uc.repo.Transaction(ctx, func(ctx context.Context, tx domain.Repository) error {
		if err := tx.LockSchedule(ctx); err != nil {
			return err
		}

		s, a, err := uc.load(ctx, tx, actor, suggestionID)
		if err != nil {
			return err
		}
		ap = a

		res, err := domain.NewEvaluator(tx, uc.log).Evaluate(ctx, s.SuggestedStart, s.SuggestedEnd, ap.ID)
		if err != nil {
			return err
		}
		if err := gate(res, acknowledged); err != nil {
			return err
		}

		if err := domain.AcceptSuggestion(ap, s); err != nil {
			return err
		}
		return uc.finish(ctx, tx, ap, s, actor, domain.NotifSuggestionAccepted)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  actor.ID,
		Action:   "suggestion_accepted",
		Entity:   "appointment",
		EntityID: ap.ID,
		Metadata: map[string]any{"suggestion_id": suggestionID},
	})

	return ap, nil
}

// Reject keeps the original slot and puts the appointment back in review.
func (uc *ResolveSuggestion) Reject(
	ctx context.Context,
	actor Actor,
	suggestionID string,
) (*models.Appointment, error) {

	var ap *models.Appointment

	err := uc.repo.Transaction(ctx, func(ctx context.Context, tx domain.Repository) error {
		s, a, err := uc.load(ctx, tx, actor, suggestionID)
		if err != nil {
			return err
		}
		ap = a

		if err := domain.RejectSuggestion(ap); err != nil {
			return err
		}
		return uc.finish(ctx, tx, ap, s, actor, domain.NotifSuggestionRejected)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  actor.ID,
		Action:   "suggestion_rejected",
		Entity:   "appointment",
		EntityID: ap.ID,
		Metadata: map[string]any{"suggestion_id": suggestionID},
	})

	return ap, nil
}

func (uc *ResolveSuggestion) load(
	ctx context.Context,
	tx domain.Repository,
	actor Actor,
	suggestionID string,
) (*models.AppointmentSuggestion, *models.Appointment, error) {

	s, err := tx.GetSuggestion(ctx, suggestionID)
	if err != nil {
		return nil, nil, err
	}
	if !s.IsActive {
		return nil, nil, httperr.ErrBusiness("invalid_state")
	}

	ap, err := tx.GetAppointment(ctx, s.AppointmentID)
	if err != nil {
		return nil, nil, err
	}
	if ap.CreatedBy != actor.ID {
		return nil, nil, httperr.ErrBusiness("not_owner")
	}

	return s, ap, nil
}

func (uc *ResolveSuggestion) finish(
	ctx context.Context,
	tx domain.Repository,
	ap *models.Appointment,
	s *models.AppointmentSuggestion,
	actor Actor,
	kind domain.NotificationType,
) error {
	if err := tx.DeactivateSuggestions(ctx, ap.ID); err != nil {
		return err
	}
	if err := tx.UpdateAppointment(ctx, ap); err != nil {
		return err
	}
	return tx.CreateNotifications(ctx, domain.NotificationsFor(kind, ap, actor.ID, s.SuggestedBy))
}

package appointment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

type SuggestAlternativeInput struct {
	Actor         Actor
	AppointmentID string

	Start   time.Time
	End     time.Time
	Message *string
}

type SuggestAlternative struct {
	repo  domain.Repository
	audit Auditor
	log   *zap.Logger
}

func NewSuggestAlternative(
	repo domain.Repository,
	audit Auditor,
	log *zap.Logger,
) *SuggestAlternative {
	return &SuggestAlternative{
		repo:  repo,
		audit: audit,
		log:   log,
	}
}

// Execute replaces any active suggestion on the appointment with a new
// one. The proposed slot may not collide with a confirmed ministry
// meeting; softer overlaps are the manager's call.
func (uc *SuggestAlternative) Execute(
	ctx context.Context,
	in SuggestAlternativeInput,
) (*models.AppointmentSuggestion, error) {

	if err := (domain.Interval{Start: in.Start, End: in.End}).Validate(); err != nil {
		return nil, err
	}

	var s *models.AppointmentSuggestion

	err := uc.repo.Transaction(ctx, func(ctx context.Context, tx domain.Repository) error {
		ap, err := tx.GetAppointment(ctx, in.AppointmentID)
		if err != nil {
			return err
		}
		if err := domain.CanSuggest(domain.Status(ap.Status)); err != nil {
			return err
		}

		res, err := domain.NewEvaluator(tx, uc.log).Evaluate(ctx, in.Start, in.End, ap.ID)
		if err != nil {
			return err
		}
		if err := gate(res, true); err != nil {
			return err
		}

		if err := tx.DeactivateSuggestions(ctx, ap.ID); err != nil {
			return err
		}

		s = &models.AppointmentSuggestion{
			AppointmentID:  ap.ID,
			SuggestedBy:    in.Actor.ID,
			SuggestedStart: in.Start.UTC(),
			SuggestedEnd:   in.End.UTC(),
			Message:        in.Message,
			IsActive:       true,
		}
		if err := tx.CreateSuggestion(ctx, s); err != nil {
			return err
		}

		if err := domain.MarkSuggested(ap, in.Actor.ID, now()); err != nil {
			return err
		}
		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		return tx.CreateNotifications(ctx,
			domain.NotificationsFor(domain.NotifAlternativeSuggested, ap, in.Actor.ID, ap.CreatedBy),
		)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  in.Actor.ID,
		Action:   "alternative_suggested",
		Entity:   "appointment_suggestion",
		EntityID: s.ID,
		Metadata: map[string]any{"appointment_id": s.AppointmentID},
	})

	return s, nil
}

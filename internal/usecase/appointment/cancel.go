package appointment

import (
	"context"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

type CancelAppointment struct {
	repo  domain.Repository
	audit Auditor
}

func NewCancelAppointment(
	repo domain.Repository,
	audit Auditor,
) *CancelAppointment {
	return &CancelAppointment{
		repo:  repo,
		audit: audit,
	}
}

// Execute cancels a non-terminal appointment. Creators cancel their own;
// managers cancel any. The other side is notified.
func (uc *CancelAppointment) Execute(
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
		if ap.CreatedBy != actor.ID && !actor.IsManager() {
			return httperr.ErrBusiness("not_owner")
		}

		if err := domain.Cancel(ap); err != nil {
			return err
		}
		if err := tx.DeactivateSuggestions(ctx, ap.ID); err != nil {
			return err
		}
		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		recipients := []string{ap.CreatedBy}
		if actor.ID == ap.CreatedBy {
			if ap.ReviewedBy != nil {
				recipients = []string{*ap.ReviewedBy}
			} else if recipients, err = managerIDs(ctx, tx); err != nil {
				return err
			}
		}

		return tx.CreateNotifications(ctx,
			domain.NotificationsFor(domain.NotifAppointmentCancelled, ap, actor.ID, recipients...),
		)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  actor.ID,
		Action:   "appointment_cancelled",
		Entity:   "appointment",
		EntityID: ap.ID,
	})

	return ap, nil
}

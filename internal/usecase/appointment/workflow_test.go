package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/reconcile"
)

func modelsAppointment(typ, status string, start, end time.Time) models.Appointment {
	return models.Appointment{
		Title:     typ + " " + status,
		Type:      typ,
		Status:    status,
		StartTime: start,
		EndTime:   end,
		CreatedBy: "coord-1",
	}
}

func TestReview_ConfirmAndReject(t *testing.T) {
	repo := newFakeRepo()
	aud := &fakeAuditor{}
	uc := NewReviewAppointment(repo, aud, zap.NewNop())

	a := repo.seed(modelsAppointment("patient", "pending", t10, t11))
	b := repo.seed(modelsAppointment("external", "pending", t11, t12))

	got, err := uc.Confirm(context.Background(), manager, a.ID, false)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), got.Status)
	require.NotNil(t, got.ReviewedBy)
	assert.Equal(t, manager.ID, *got.ReviewedBy)

	got, err = uc.Reject(context.Background(), manager, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), got.Status)

	assert.Equal(t, []string{"coord-1"}, repo.notified(domain.NotifAppointmentConfirmed))
	assert.Equal(t, []string{"coord-1"}, repo.notified(domain.NotifAppointmentRejected))
	assert.Equal(t, []string{"appointment_confirmed", "appointment_rejected"}, aud.actions())

	_, err = uc.Reject(context.Background(), manager, b.ID)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
}

func TestReview_ConfirmRefusedOnMinistryBlock(t *testing.T) {
	repo := newFakeRepo()
	uc := NewReviewAppointment(repo, &fakeAuditor{}, zap.NewNop())

	repo.seed(modelsAppointment("ministry", "confirmed", t10, t11))
	ap := repo.seed(modelsAppointment("patient", "pending", t10, t11))

	_, err := uc.Confirm(context.Background(), manager, ap.ID, true)
	assert.True(t, httperr.IsBusiness(err, "ministry_conflict"))
	assert.Equal(t, string(domain.StatusPending), repo.apps[ap.ID].Status)
}

func TestReview_ConfirmIgnoresItself(t *testing.T) {
	repo := newFakeRepo()
	uc := NewReviewAppointment(repo, &fakeAuditor{}, zap.NewNop())

	ap := repo.seed(modelsAppointment("ministry", "pending", t10, t11))

	got, err := uc.Confirm(context.Background(), manager, ap.ID, false)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), got.Status)
}

func TestReview_ConfirmUnavailableWhenCheckFails(t *testing.T) {
	repo := newFakeRepo()
	repo.overlapErr = errors.New("timeout")
	uc := NewReviewAppointment(repo, &fakeAuditor{}, zap.NewNop())

	ap := repo.seed(modelsAppointment("patient", "pending", t10, t11))

	_, err := uc.Confirm(context.Background(), manager, ap.ID, true)
	assert.True(t, httperr.IsBusiness(err, "conflict_check_unavailable"))
}

func TestSuggest_KeepsOneActiveSuggestion(t *testing.T) {
	repo := newFakeRepo()
	uc := NewSuggestAlternative(repo, &fakeAuditor{}, zap.NewNop())

	ap := repo.seed(modelsAppointment("patient", "pending", t10, t11))

	first, err := uc.Execute(context.Background(), SuggestAlternativeInput{
		Actor: manager, AppointmentID: ap.ID, Start: t11, End: t12,
	})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusSuggested), repo.apps[ap.ID].Status)

	second, err := uc.Execute(context.Background(), SuggestAlternativeInput{
		Actor: manager, AppointmentID: ap.ID, Start: t12, End: t12.Add(time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.activeSuggestions(ap.ID))
	assert.False(t, repo.suggestions[first.ID].IsActive)
	assert.True(t, repo.suggestions[second.ID].IsActive)
	assert.Len(t, repo.notified(domain.NotifAlternativeSuggested), 2)
}

func TestSuggest_RefusesBlockedSlot(t *testing.T) {
	repo := newFakeRepo()
	uc := NewSuggestAlternative(repo, &fakeAuditor{}, zap.NewNop())

	repo.seed(modelsAppointment("ministry", "confirmed", t11, t12))
	ap := repo.seed(modelsAppointment("patient", "pending", t10, t11))

	_, err := uc.Execute(context.Background(), SuggestAlternativeInput{
		Actor: manager, AppointmentID: ap.ID, Start: t11, End: t12,
	})
	assert.True(t, httperr.IsBusiness(err, "ministry_conflict"))
	assert.Zero(t, repo.activeSuggestions(ap.ID))
}

func suggested(t *testing.T, repo *fakeRepo) (*models.Appointment, *models.AppointmentSuggestion) {
	t.Helper()
	ap := repo.seed(modelsAppointment("patient", "pending", t10, t11))
	s, err := NewSuggestAlternative(repo, &fakeAuditor{}, zap.NewNop()).Execute(
		context.Background(),
		SuggestAlternativeInput{Actor: manager, AppointmentID: ap.ID, Start: t11, End: t12},
	)
	require.NoError(t, err)
	return ap, s
}

func TestListSuggestions_ServedThroughProjection(t *testing.T) {
	repo := newFakeRepo()
	ap, s := suggested(t, repo)

	proj := reconcile.NewSuggestions(repo)
	uc := NewListSuggestions(repo, proj)

	got, err := uc.Execute(context.Background(), ap.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, s.ID, got[0].ID)
	assert.Equal(t, []models.AppointmentSuggestion{got[0]}, proj.Active(ap.ID))

	_, err = uc.Execute(context.Background(), "missing")
	assert.Error(t, err)
	assert.Equal(t, 1, proj.Len())
}

func TestResolveSuggestion_AcceptAdoptsInterval(t *testing.T) {
	repo := newFakeRepo()
	aud := &fakeAuditor{}
	uc := NewResolveSuggestion(repo, aud, zap.NewNop())
	ap, s := suggested(t, repo)

	got, err := uc.Accept(context.Background(), coordinator, s.ID, false)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), got.Status)
	assert.True(t, got.StartTime.Equal(t11))
	assert.True(t, got.EndTime.Equal(t12))
	assert.Zero(t, repo.activeSuggestions(ap.ID))
	assert.Equal(t, []string{"mgr-1"}, repo.notified(domain.NotifSuggestionAccepted))
	assert.Equal(t, []string{"suggestion_accepted"}, aud.actions())

	_, err = uc.Accept(context.Background(), coordinator, s.ID, false)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
}

func TestResolveSuggestion_RejectReturnsToPending(t *testing.T) {
	repo := newFakeRepo()
	uc := NewResolveSuggestion(repo, &fakeAuditor{}, zap.NewNop())
	ap, s := suggested(t, repo)

	got, err := uc.Reject(context.Background(), coordinator, s.ID)
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), got.Status)
	assert.True(t, got.StartTime.Equal(t10))
	assert.Zero(t, repo.activeSuggestions(ap.ID))
	assert.Equal(t, []string{"mgr-1"}, repo.notified(domain.NotifSuggestionRejected))
}

func TestResolveSuggestion_OnlyCreator(t *testing.T) {
	repo := newFakeRepo()
	uc := NewResolveSuggestion(repo, &fakeAuditor{}, zap.NewNop())
	_, s := suggested(t, repo)

	other := Actor{ID: "coord-2", Role: domain.RoleCoordinator}
	_, err := uc.Accept(context.Background(), other, s.ID, false)
	assert.True(t, httperr.IsBusiness(err, "not_owner"))

	_, err = uc.Reject(context.Background(), coordinator, "missing")
	assert.True(t, httperr.IsBusiness(err, "suggestion_not_found"))
}

func TestCancel(t *testing.T) {
	repo := newFakeRepo()
	uc := NewCancelAppointment(repo, &fakeAuditor{})

	mine := repo.seed(modelsAppointment("patient", "pending", t10, t11))

	other := Actor{ID: "coord-2", Role: domain.RoleCoordinator}
	_, err := uc.Execute(context.Background(), other, mine.ID)
	assert.True(t, httperr.IsBusiness(err, "not_owner"))

	got, err := uc.Execute(context.Background(), coordinator, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), got.Status)
	assert.Equal(t, []string{"mgr-1", "mgr-2"}, repo.notified(domain.NotifAppointmentCancelled))

	_, err = uc.Execute(context.Background(), coordinator, mine.ID)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
}

func TestCancel_ByManagerNotifiesCreator(t *testing.T) {
	repo := newFakeRepo()
	uc := NewCancelAppointment(repo, &fakeAuditor{})

	ap := repo.seed(modelsAppointment("external", "confirmed", t10, t11))

	_, err := uc.Execute(context.Background(), manager, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"coord-1"}, repo.notified(domain.NotifAppointmentCancelled))
}

func TestListAppointments(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(modelsAppointment("patient", "pending", t11, t12))
	repo.seed(modelsAppointment("ministry", "confirmed", t10, t11))

	out, err := NewListAppointments(repo).Execute(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "ministry", out[0].Type)

	from, to := t11, t10
	_, err = NewListAppointments(repo).Execute(context.Background(), &from, &to)
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
}

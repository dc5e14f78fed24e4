package appointment

import (
	"time"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Confirm(ap *models.Appointment, reviewer string, now time.Time) error {
	if err := CanReview(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusConfirmed)
	ap.ReviewedBy = &reviewer
	ap.ReviewedAt = &now
	return nil
}

func Reject(ap *models.Appointment, reviewer string, now time.Time) error {
	if err := CanReview(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusRejected)
	ap.ReviewedBy = &reviewer
	ap.ReviewedAt = &now
	return nil
}

func MarkSuggested(ap *models.Appointment, reviewer string, now time.Time) error {
	if err := CanSuggest(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusSuggested)
	ap.ReviewedBy = &reviewer
	ap.ReviewedAt = &now
	return nil
}

// AcceptSuggestion moves the appointment to the suggested slot and
// confirms it.
func AcceptSuggestion(ap *models.Appointment, s *models.AppointmentSuggestion) error {
	if err := CanResolveSuggestion(Status(ap.Status)); err != nil {
		return err
	}

	ap.StartTime = s.SuggestedStart
	ap.EndTime = s.SuggestedEnd
	ap.Status = string(StatusConfirmed)
	return nil
}

// RejectSuggestion sends the appointment back to the review queue at its
// original slot.
func RejectSuggestion(ap *models.Appointment) error {
	if err := CanResolveSuggestion(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusPending)
	return nil
}

func Cancel(ap *models.Appointment) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	return nil
}

func IntervalOf(ap *models.Appointment) Interval {
	return Interval{Start: ap.StartTime, End: ap.EndTime}
}

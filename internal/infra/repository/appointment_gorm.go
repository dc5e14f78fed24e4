package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/push"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/realtime"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/session"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) conn(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func notFound(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrBusiness(code)
	}
	return err
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(ctx context.Context, tx domain.Repository) error,
) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &AppointmentGormRepository{db: tx})
	})
}

func (r *AppointmentGormRepository) LockSchedule(ctx context.Context) error {
	return r.conn(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext('mawaid.schedule'))").
		Error
}

// --------------------------------------------------
// Overlap
// --------------------------------------------------

func (r *AppointmentGormRepository) FindOverlapping(
	ctx context.Context,
	start time.Time,
	end time.Time,
	excludeID string,
) ([]domain.Conflict, error) {

	var exclude any
	if excludeID != "" {
		exclude = excludeID
	}

	var rows []domain.Conflict
	if err := r.conn(ctx).
		Raw(
			"SELECT id, title, type, status, start_time, end_time FROM check_appointment_overlap(?, ?, ?)",
			start, end, exclude,
		).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.conn(ctx).Create(ap).Error
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.conn(ctx).First(&ap, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "appointment_not_found")
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.conn(ctx).Save(ap).Error
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	from *time.Time,
	to *time.Time,
) ([]models.Appointment, error) {

	q := r.conn(ctx).Model(&models.Appointment{})
	if from != nil {
		q = q.Where("end_time > ?", *from)
	}
	if to != nil {
		q = q.Where("start_time < ?", *to)
	}

	var apps []models.Appointment
	if err := q.Order("start_time ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// --------------------------------------------------
// Suggestion
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateSuggestion(
	ctx context.Context,
	s *models.AppointmentSuggestion,
) error {
	return r.conn(ctx).Create(s).Error
}

func (r *AppointmentGormRepository) GetSuggestion(
	ctx context.Context,
	id string,
) (*models.AppointmentSuggestion, error) {

	var s models.AppointmentSuggestion
	if err := r.conn(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "suggestion_not_found")
	}
	return &s, nil
}

func (r *AppointmentGormRepository) ListActiveSuggestions(
	ctx context.Context,
	appointmentID string,
) ([]models.AppointmentSuggestion, error) {

	var out []models.AppointmentSuggestion
	if err := r.conn(ctx).
		Where("appointment_id = ? AND is_active = ?", appointmentID, true).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AppointmentGormRepository) DeactivateSuggestions(
	ctx context.Context,
	appointmentID string,
) error {
	return r.conn(ctx).
		Model(&models.AppointmentSuggestion{}).
		Where("appointment_id = ? AND is_active = ?", appointmentID, true).
		Update("is_active", false).Error
}

// --------------------------------------------------
// Profile
// --------------------------------------------------

func (r *AppointmentGormRepository) GetProfile(
	ctx context.Context,
	id string,
) (*models.Profile, error) {

	var p models.Profile
	if err := r.conn(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "profile_not_found")
	}
	return &p, nil
}

func (r *AppointmentGormRepository) ListProfileIDsByRole(
	ctx context.Context,
	role domain.Role,
) ([]string, error) {

	var ids []string
	if err := r.conn(ctx).
		Model(&models.Profile{}).
		Where("role = ?", string(role)).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *AppointmentGormRepository) PushToken(
	ctx context.Context,
	profileID string,
) (string, error) {

	p, err := r.GetProfile(ctx, profileID)
	if err != nil {
		if httperr.IsBusiness(err, "profile_not_found") {
			return "", nil
		}
		return "", err
	}
	if p.PushToken == nil {
		return "", nil
	}
	return *p.PushToken, nil
}

func (r *AppointmentGormRepository) SetPushToken(
	ctx context.Context,
	profileID string,
	token *string,
) error {

	res := r.conn(ctx).
		Model(&models.Profile{}).
		Where("id = ?", profileID).
		Update("push_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrBusiness("profile_not_found")
	}
	return nil
}

func (r *AppointmentGormRepository) ClearPushToken(
	ctx context.Context,
	profileID string,
) error {
	return r.conn(ctx).
		Model(&models.Profile{}).
		Where("id = ?", profileID).
		Update("push_token", nil).Error
}

// --------------------------------------------------
// Notification
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateNotifications(
	ctx context.Context,
	ns []models.Notification,
) error {
	if len(ns) == 0 {
		return nil
	}
	return r.conn(ctx).Create(&ns).Error
}

func (r *AppointmentGormRepository) ListNotifications(
	ctx context.Context,
	recipientID string,
) ([]models.Notification, error) {

	var out []models.Notification
	if err := r.conn(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AppointmentGormRepository) MarkNotificationRead(
	ctx context.Context,
	id string,
	recipientID string,
) error {

	res := r.conn(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrBusiness("notification_not_found")
	}
	return nil
}

// --------------------------------------------------
// Change feed
// --------------------------------------------------

// LoadRow reads the current image of a watched row for the change feed.
func (r *AppointmentGormRepository) LoadRow(
	ctx context.Context,
	table string,
	id string,
) (json.RawMessage, error) {

	var row any
	switch table {
	case realtime.TableAppointments:
		row = &models.Appointment{}
	case realtime.TableSuggestions:
		row = &models.AppointmentSuggestion{}
	case realtime.TableNotifications:
		row = &models.Notification{}
	default:
		return nil, fmt.Errorf("%w: %q", realtime.ErrUnknownTable, table)
	}

	if err := r.conn(ctx).Where("id = ?", id).First(row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, realtime.ErrRowGone
		}
		return nil, err
	}
	return json.Marshal(row)
}

// Compile-time checks
var (
	_ domain.Repository = (*AppointmentGormRepository)(nil)
	_ session.Source    = (*AppointmentGormRepository)(nil)
	_ push.TokenStore   = (*AppointmentGormRepository)(nil)
	_ realtime.Loader   = (*AppointmentGormRepository)(nil)
)

package audit

import (
	"context"
	"time"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Filter narrows the audit trail. Zero fields are ignored; To is
// exclusive.
type Filter struct {
	Action   string
	Entity   string
	EntityID string
	ActorID  string
	From     *time.Time
	To       *time.Time

	Page  int
	Limit int
}

// Normalize clamps paging to sane values.
func (f Filter) Normalize() Filter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > MaxPageSize {
		f.Limit = DefaultPageSize
	}
	return f
}

type Page struct {
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
	Logs  []models.AuditLog `json:"logs"`
}

// Reader lists audit rows newest first.
type Reader interface {
	List(ctx context.Context, f Filter) (Page, error)
}

func (l *Logger) List(ctx context.Context, f Filter) (Page, error) {
	f = f.Normalize()

	q := l.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.ActorID != "" {
		q = q.Where("actor_id = ?", f.ActorID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	out := Page{Page: f.Page, Limit: f.Limit, Logs: []models.AuditLog{}}
	if err := q.Count(&out.Total).Error; err != nil {
		return Page{}, err
	}

	err := q.
		Order("created_at DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&out.Logs).Error
	if err != nil {
		return Page{}, err
	}
	return out, nil
}

var _ Reader = (*Logger)(nil)

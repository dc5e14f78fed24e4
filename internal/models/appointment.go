package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Appointment struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	Title  string `gorm:"size:200;not null" json:"title"`
	Type   string `gorm:"size:20;not null;index" json:"type"`
	Status string `gorm:"size:20;not null;default:'pending';index" json:"status"`

	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	Location *string `gorm:"size:255" json:"location"`
	Notes    *string `gorm:"type:text" json:"notes"`

	CreatedBy  string     `gorm:"type:uuid;not null;index" json:"created_by"`
	ReviewedBy *string    `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt *time.Time `json:"reviewed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

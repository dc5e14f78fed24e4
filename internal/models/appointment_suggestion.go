package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentSuggestion struct {
	ID            string `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID string `gorm:"type:uuid;not null;index" json:"appointment_id"`
	SuggestedBy   string `gorm:"type:uuid;not null" json:"suggested_by"`

	SuggestedStart time.Time `gorm:"not null" json:"suggested_start"`
	SuggestedEnd   time.Time `gorm:"not null" json:"suggested_end"`

	Message  *string `gorm:"type:text" json:"message"`
	IsActive bool    `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
}

func (s *AppointmentSuggestion) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

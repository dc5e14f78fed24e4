package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID string `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Type        string `gorm:"size:40;not null" json:"type"`

	Title string `gorm:"size:200;not null" json:"title"`
	Body  string `gorm:"type:text;not null" json:"body"`

	AppointmentID *string `gorm:"type:uuid" json:"appointment_id"`
	IsRead        bool    `gorm:"not null;default:false" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

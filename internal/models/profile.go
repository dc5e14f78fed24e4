package models

import "time"

// Profile mirrors an account of the hosted auth service. The id is the
// token subject; rows are provisioned by the auth side, not by this API.
type Profile struct {
	ID        string  `gorm:"type:uuid;primaryKey" json:"id"`
	Role      string  `gorm:"size:20;not null;default:'coordinator'" json:"role"`
	FullName  string  `gorm:"size:150;not null" json:"full_name"`
	PushToken *string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

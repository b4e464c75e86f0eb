package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailCapture records a visitor leaving their address against an event.
type EmailCapture struct {
	ID         string    `gorm:"type:text;primaryKey"`
	Email      string    `gorm:"type:text;not null"`
	Consent    bool      `gorm:"not null"`
	EventID    string    `gorm:"type:text;not null"`
	CapturedAt time.Time `gorm:"type:timestamptz;not null;default:timezone('utc'::text, now())"`
}

func (e *EmailCapture) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

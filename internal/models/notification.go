package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is a write-only dispatch audit row. WorkoutID and UserID are
// plain nullable columns, not foreign keys: a cancellation notice must be
// recordable after its workout is gone.
type Notification struct {
	BaseModel

	WorkoutID *uint  `gorm:"index"`
	UserID    *uint  `gorm:"index"`
	Channel   string `gorm:"not null"` // "email"
	Verb      string `gorm:"not null"` // "REQUEST" or "CANCEL"
	Status    string `gorm:"not null"` // "sent" or "failed"
	Message   string
	Payload   datatypes.JSON
	SentAt    *time.Time
}

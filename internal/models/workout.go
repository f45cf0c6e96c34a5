package models

import "time"

type Workout struct {
	BaseModel

	Title           string    `gorm:"not null"`
	Description     string
	WorkoutType     string    `gorm:"not null"`
	Date            time.Time `gorm:"not null;index"`
	MaxParticipants int       `gorm:"not null"`
	// CreatedBy is deliberately not a foreign key: workouts outlive the
	// account that created them.
	CreatedBy uint `gorm:"not null;index"`
	// Sequence is the iCalendar version number. It starts at 0 and is
	// bumped on every update so calendar clients can discard stale invites.
	Sequence int  `gorm:"not null;default:0"`
	Result   *string
	Rating   *int

	// Relationships
	Registrations []Registration `gorm:"foreignKey:WorkoutID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Edits         []WorkoutEdit  `gorm:"foreignKey:WorkoutID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

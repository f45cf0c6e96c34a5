package models

// WorkoutEdit is an append-only audit row written on every workout update.
// Nothing reads it back; it exists for manual inspection only.
type WorkoutEdit struct {
	BaseModel

	WorkoutID uint `gorm:"not null;index"`
	UserID    uint `gorm:"not null;index"`
}

package models

type WorkoutTemplate struct {
	BaseModel

	Title       string `gorm:"not null"`
	Description string
	WorkoutType string `gorm:"not null"`
	Category    string `gorm:"not null"` // "Team of 2", "Team of 3", "Solo", "Custom"
	// TimesUsed only ever increases; bumped whenever a workout is created
	// from this template.
	TimesUsed int `gorm:"not null;default:0"`
}

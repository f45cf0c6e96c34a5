package models

type Registration struct {
	BaseModel

	WorkoutID uint `gorm:"not null;uniqueIndex:idx_workout_user"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_workout_user"`
	Attended  bool `gorm:"not null;default:false"`

	// Relationships
	Workout Workout `gorm:"foreignKey:WorkoutID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

package models

type Poll struct {
	BaseModel

	Title       string `gorm:"not null"`
	Description string
	TemplateID  *uint  `gorm:"index"`
	CreatedBy   uint   `gorm:"not null;index"`
	Status      string `gorm:"not null;default:active"` // "active" or "closed", one-way

	// Relationships
	Template *WorkoutTemplate `gorm:"foreignKey:TemplateID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Options  []PollOption     `gorm:"foreignKey:PollID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

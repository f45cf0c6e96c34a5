package models

import "time"

type PollOption struct {
	BaseModel

	PollID uint      `gorm:"not null;index"`
	Date   time.Time `gorm:"not null"`
	Label  string

	// Relationships
	Poll  Poll       `gorm:"foreignKey:PollID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Votes []PollVote `gorm:"foreignKey:PollOptionID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

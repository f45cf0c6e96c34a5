package models

type PollVote struct {
	BaseModel

	PollOptionID uint `gorm:"not null;uniqueIndex:idx_option_user"`
	UserID       uint `gorm:"not null;uniqueIndex:idx_option_user"`

	// Relationships
	PollOption PollOption `gorm:"foreignKey:PollOptionID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User       User       `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

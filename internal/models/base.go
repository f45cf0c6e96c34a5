package models

import "time"

// BaseModel is like gorm.Model but without soft deletes, so that
// ON DELETE CASCADE constraints actually remove child rows.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

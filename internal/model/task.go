package model

import "time"

type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskPatch is a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

package task

import "time"

// Task is the persisted to-do item.
// ID and both timestamps are assigned by the repository; callers never set them.
type Task struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Title       string     `gorm:"size:200;not null"`
	Description *string    `gorm:"size:1000"`
	IsCompleted bool       `gorm:"not null;default:false;index"`
	DueDate     *time.Time `gorm:"index"`
	CreatedAt   time.Time  `gorm:"not null;index"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

package models

import "time"

// TaskLog is an append-only structured annotation on a task, distinct from
// the task's truncated primary log field. Entries are never mutated and are
// removed only with their parent task.
type TaskLog struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	TaskID    uint   `gorm:"index" json:"-"`
	Level     string `gorm:"size:16;default:INFO" json:"level"`
	Message   string `gorm:"type:text" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import "time"

// Task is the unit of dispatchable work. The external id (TaskUUID) is the
// only identifier agents ever see; user_key and device_identifier are
// denormalized from the owning records so reports can be ownership-checked
// without joins.
type Task struct {
	ID               uint       `gorm:"primaryKey" json:"-"`
	TaskUUID         string     `gorm:"uniqueIndex;size:64;not null" json:"task_uuid"`
	UserID           uint       `gorm:"index" json:"-"`
	UserKey          string     `gorm:"index;size:64" json:"user_key"`
	DeviceID         uint       `gorm:"index" json:"-"`
	DeviceIdentifier string     `gorm:"index;size:128" json:"device_identifier"`
	Type             string     `gorm:"size:64" json:"type"`
	Params           JSONMap    `gorm:"type:text" json:"params"`
	Status           TaskStatus `gorm:"size:16;index" json:"status"`
	Priority         int        `json:"priority"`
	CreatedAt        time.Time  `json:"created_at"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	Log              string     `gorm:"type:text" json:"log,omitempty"`
	ErrorMessage     string     `gorm:"type:text" json:"error_message,omitempty"`

	Logs []TaskLog `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

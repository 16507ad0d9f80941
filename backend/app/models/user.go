package models

import "time"

// User is a logical tenant identified by an opaque key. Created lazily on
// first contact from an agent, never deleted by the dispatch subsystem.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserKey   string    `gorm:"uniqueIndex;size:64;not null" json:"user_key"`
	Name      string    `gorm:"size:128" json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Devices []Device `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

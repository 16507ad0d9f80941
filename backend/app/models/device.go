package models

import "time"

const (
	DeviceOnline  = "online"
	DeviceOffline = "offline"
)

// Device is an identity and liveness record for one remote agent process,
// unique per (user_key, identifier). It carries no execution state beyond its
// own metadata.
type Device struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index" json:"-"`
	UserKey      string     `gorm:"uniqueIndex:uq_user_device;size:64" json:"user_key"`
	Identifier   string     `gorm:"uniqueIndex:uq_user_device;size:128" json:"device_id"`
	DisplayName  string     `gorm:"size:128" json:"display_name,omitempty"`
	Status       string     `gorm:"size:32;default:offline" json:"status"`
	AgentVersion string     `gorm:"size:64" json:"agent_version,omitempty"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

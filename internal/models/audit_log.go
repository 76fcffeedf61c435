package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	// nil for actions without a logged-in user
	UserID *uint `json:"userId,omitempty"`
	User   *User `json:"user,omitempty"`

	SystemID string `gorm:"size:36;index" json:"systemId,omitempty"`
	Entity   string `gorm:"size:50;not null" json:"entity"` // "system", "control", "event", ...
	EntityID string `gorm:"size:36;not null" json:"entityId"`
	Action   string `gorm:"size:50;not null" json:"action"` // "create", "transition", "classify", ...
	Details  string `gorm:"type:text" json:"details"`
}

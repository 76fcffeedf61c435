package models

import (
	"time"

	"gorm.io/gorm"
)

// RiskEvent is a recorded incident or near-miss of one system.
type RiskEvent struct {
	ID        string    `gorm:"primaryKey;size:36" json:"eventId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	SystemID    string      `gorm:"size:36;index;not null" json:"systemId" validate:"required"`
	Title       string      `gorm:"size:255;not null" json:"title" validate:"required,min=3,max=255"`
	Description string      `gorm:"type:text" json:"description"`
	EventType   string      `gorm:"size:64;not null" json:"eventType" validate:"required,max=64"`
	Severity    Severity    `gorm:"type:varchar(16);not null" json:"severity" validate:"required,enum"`
	Status      EventStatus `gorm:"type:varchar(24);not null" json:"status" validate:"required,enum"`

	DetectionDate  time.Time `json:"detectionDate"`
	RootCause      string    `gorm:"type:text" json:"rootCause,omitempty"`
	ResolutionNote string    `gorm:"type:text" json:"resolutionNote,omitempty"`

	// set once, on the first move into resolved or closed
	ClosureDate *time.Time `json:"closureDate,omitempty"`
}

func (e *RiskEvent) BeforeCreate(tx *gorm.DB) error {
	assignID(&e.ID)
	if e.Status == "" {
		e.Status = EventNew
	}
	return nil
}

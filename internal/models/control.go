package models

import (
	"time"

	"gorm.io/gorm"
)

// RiskControl is a mitigating measure owned by exactly one system.
// Category is the requirement (safeguard category) the control addresses.
type RiskControl struct {
	ID        string    `gorm:"primaryKey;size:36" json:"controlId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	SystemID    string      `gorm:"size:36;index;not null" json:"systemId" validate:"required"`
	Name        string      `gorm:"size:255;not null" json:"name" validate:"required,min=3,max=255"`
	Description string      `gorm:"type:text" json:"description"`
	ControlType ControlType `gorm:"type:varchar(20);not null" json:"controlType" validate:"required,enum"`
	Category    string      `gorm:"size:64;index" json:"category" validate:"max=64"`
	Owner       string      `gorm:"size:255" json:"owner" validate:"max=255"`

	ImplementationStatus ControlStatus `gorm:"type:varchar(20);not null" json:"implementationStatus" validate:"required,enum"`
	Effectiveness        Effectiveness `gorm:"type:varchar(24);not null" json:"effectiveness" validate:"required,enum"`

	// first implementation, never overwritten
	ImplementationDate *time.Time `json:"implementationDate,omitempty"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty"`

	// implementation cycle, bumped by an explicit reset
	Attempt int `gorm:"not null;default:1" json:"attempt"`

	// weak back-references to ComplianceGap ids, informational only
	RelatedGaps []string `gorm:"serializer:json" json:"relatedGaps"`
}

func (c *RiskControl) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	if c.ImplementationStatus == "" {
		c.ImplementationStatus = ControlPlanned
	}
	if c.Effectiveness == "" {
		c.Effectiveness = EffectNotImplemented
	}
	if c.Attempt == 0 {
		c.Attempt = 1
	}
	return nil
}

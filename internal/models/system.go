package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// AiSystem is a registered AI system. RiskLevel and RiskScore are a cache of
// the latest classification and are rewritten on every re-classification.
type AiSystem struct {
	ID        string    `gorm:"primaryKey;size:36" json:"systemId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name       string `gorm:"size:255;not null" json:"name" validate:"required,min=3,max=255"`
	Purpose    string `gorm:"type:text" json:"purpose"`
	Department string `gorm:"size:255" json:"department" validate:"max=255"`
	Vendor     string `gorm:"size:255" json:"vendor" validate:"max=255"`
	Version    string `gorm:"size:64" json:"version" validate:"max=64"`

	RiskLevel    RiskLevel  `gorm:"type:varchar(16)" json:"riskLevel,omitempty" validate:"omitempty,enum"`
	RiskScore    int        `json:"riskScore"`
	ClassifiedAt *time.Time `json:"classifiedAt,omitempty"`
}

func (s *AiSystem) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// RiskManagementSystem is the single risk management system of an AiSystem.
// Version is the optimistic concurrency token, bumped on every update.
type RiskManagementSystem struct {
	ID        string    `gorm:"primaryKey;size:36" json:"rmsId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	SystemID       string      `gorm:"size:36;uniqueIndex;not null" json:"systemId" validate:"required"`
	Status         RMSStatus   `gorm:"type:varchar(20);not null" json:"status" validate:"required,enum"`
	ReviewCycle    ReviewCycle `gorm:"type:varchar(20);not null" json:"reviewCycle" validate:"required,enum"`
	Owner          string      `gorm:"size:255" json:"owner" validate:"max=255"`
	Scope          string      `gorm:"type:text" json:"scope"`
	LastReviewDate *time.Time  `json:"lastReviewDate,omitempty"`
	NextReviewDate *time.Time  `json:"nextReviewDate,omitempty"`
	Version        int         `gorm:"not null;default:1" json:"version"`
}

func (r *RiskManagementSystem) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	if r.Version == 0 {
		r.Version = 1
	}
	return nil
}

// ReviewOverdue is computed on read, nothing marks the RMS outdated in the background.
func (r *RiskManagementSystem) ReviewOverdue(now time.Time) bool {
	return r.NextReviewDate != nil && r.NextReviewDate.Before(now)
}

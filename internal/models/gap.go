package models

import "time"

// ComplianceGap is derived by the gap analyzer. The id is deterministic
// (see risk.GapID) so a regenerated set replaces the old one row for row.
type ComplianceGap struct {
	ID        string    `gorm:"primaryKey;size:36" json:"gapId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	AssessmentID string `gorm:"size:36;not null;uniqueIndex:idx_gap_assessment_requirement" json:"assessmentId" validate:"required"`
	SystemID     string `gorm:"size:36;index;not null" json:"systemId" validate:"required"`

	Requirement string    `gorm:"size:64;not null;uniqueIndex:idx_gap_assessment_requirement" json:"requirement" validate:"required"`
	Article     string    `gorm:"size:64" json:"article"`
	Title       string    `gorm:"size:255" json:"title"`
	Severity    Severity  `gorm:"type:varchar(16);not null" json:"severity" validate:"required,enum"`
	Status      GapStatus `gorm:"type:varchar(20);not null" json:"status" validate:"required,enum"`

	// partial coverage: a deployed control exists but is only partially effective
	Partial           bool   `json:"partial"`
	CoveringControlID string `gorm:"size:36" json:"coveringControlId,omitempty"`
}

// Unresolved is true for open and in_remediation gaps.
func (g *ComplianceGap) Unresolved() bool {
	return g.Status != GapClosed
}

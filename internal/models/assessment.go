package models

import (
	"time"

	"gorm.io/gorm"
)

// Answers are nullable: nil means the assessor has not answered yet,
// which is different from "false".

type ProhibitedUseFlags struct {
	SocialScoring             *bool `json:"socialScoring"`
	VulnerabilityExploitation *bool `json:"vulnerabilityExploitation"`
	SubliminalTechniques      *bool `json:"subliminalTechniques"`
	BiometricIdentification   *bool `json:"biometricIdentification"`
}

type HighRiskCategoryFlags struct {
	BiometricCategory        *bool `json:"biometricCategory"`
	CriticalInfrastructure   *bool `json:"criticalInfrastructure"`
	EducationVocational      *bool `json:"educationVocational"`
	EmploymentWorkManagement *bool `json:"employmentWorkManagement"`
	EssentialServices        *bool `json:"essentialServices"`
	LawEnforcement           *bool `json:"lawEnforcement"`
	MigrationAsylumBorder    *bool `json:"migrationAsylumBorder"`
	JusticeProcesses         *bool `json:"justiceProcesses"`
}

type RiskParameters struct {
	AutonomyLevel     *ParameterLevel `gorm:"type:varchar(16)" json:"autonomyLevel"`
	TechnicalMaturity *ParameterLevel `gorm:"type:varchar(16)" json:"technicalMaturity"`
	ImpactSeverity    *ParameterLevel `gorm:"type:varchar(16)" json:"impactSeverity"`
	ScaleOfDeployment *ParameterLevel `gorm:"type:varchar(16)" json:"scaleOfDeployment"`
	UserVulnerability *ParameterLevel `gorm:"type:varchar(16)" json:"userVulnerability"`
}

// RiskAssessment holds the answers of one assessment of a system.
// RiskLevel/RiskScore are always recomputed from the answers on this row.
type RiskAssessment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"assessmentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	SystemID string `gorm:"size:36;index;not null" json:"systemId" validate:"required"`

	ProhibitedUseFlags    ProhibitedUseFlags    `gorm:"embedded;embeddedPrefix:prohibited_" json:"prohibitedUseFlags"`
	HighRiskCategoryFlags HighRiskCategoryFlags `gorm:"embedded;embeddedPrefix:high_risk_" json:"highRiskCategoryFlags"`
	RiskParameters        RiskParameters        `gorm:"embedded;embeddedPrefix:param_" json:"riskParameters"`

	RiskLevel RiskLevel        `gorm:"type:varchar(16)" json:"riskLevel,omitempty" validate:"omitempty,enum"`
	RiskScore int              `json:"riskScore"`
	Status    AssessmentStatus `gorm:"type:varchar(20);not null" json:"status" validate:"required,enum"`

	AssessedBy  string     `gorm:"size:50" json:"assessedBy,omitempty"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (a *RiskAssessment) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	if a.Status == "" {
		a.Status = AssessmentDraft
	}
	return nil
}

// Classified is true once a risk level has been computed.
func (a *RiskAssessment) Classified() bool {
	return a.RiskLevel.Valid()
}

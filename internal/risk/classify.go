package risk

import (
	"fmt"

	"ai-risk-registry/internal/models"
)

// DefaultLimitedThreshold separates limited from minimal when no flag applies.
const DefaultLimitedThreshold = 18

type ClassificationInput struct {
	ProhibitedUseFlags    models.ProhibitedUseFlags    `json:"prohibitedUseFlags"`
	HighRiskCategoryFlags models.HighRiskCategoryFlags `json:"highRiskCategoryFlags"`
	RiskParameters        models.RiskParameters        `json:"riskParameters"`
}

// InputOf takes the answers stored on an assessment.
func InputOf(a *models.RiskAssessment) ClassificationInput {
	return ClassificationInput{
		ProhibitedUseFlags:    a.ProhibitedUseFlags,
		HighRiskCategoryFlags: a.HighRiskCategoryFlags,
		RiskParameters:        a.RiskParameters,
	}
}

type Classification struct {
	RiskLevel models.RiskLevel `json:"riskLevel"`
	RiskScore int              `json:"riskScore"`
}

type Classifier struct {
	LimitedThreshold int
}

func NewClassifier(limitedThreshold int) (*Classifier, error) {
	if limitedThreshold < MinScore || limitedThreshold > MaxScore {
		return nil, fmt.Errorf("limited threshold %d outside [%d,%d]", limitedThreshold, MinScore, MaxScore)
	}
	return &Classifier{LimitedThreshold: limitedThreshold}, nil
}

var defaultClassifier = Classifier{LimitedThreshold: DefaultLimitedThreshold}

// Classify uses the default threshold.
func Classify(in ClassificationInput) (Classification, error) {
	return defaultClassifier.Classify(in)
}

// Classify derives the tier. First match wins:
// prohibited use → unacceptable (score pinned to MaxScore),
// high-risk category → high (score still computed),
// otherwise the weighted score decides between limited and minimal.
func (c *Classifier) Classify(in ClassificationInput) (Classification, error) {
	prohibited, highRisk, params := namedInputs(in)

	var missing []string
	for _, f := range prohibited {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}
	for _, f := range highRisk {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}
	for _, p := range params {
		if p.value == nil {
			missing = append(missing, p.name)
		}
	}
	if len(missing) > 0 {
		return Classification{}, &MissingInputError{Fields: missing}
	}

	score := 0
	for _, p := range params {
		w, err := Weight(p.name, *p.value)
		if err != nil {
			return Classification{}, err
		}
		score += w
	}

	if anyTrue(prohibited) {
		return Classification{RiskLevel: models.RiskUnacceptable, RiskScore: MaxScore}, nil
	}
	if anyTrue(highRisk) {
		return Classification{RiskLevel: models.RiskHigh, RiskScore: score}, nil
	}
	if score >= c.LimitedThreshold {
		return Classification{RiskLevel: models.RiskLimited, RiskScore: score}, nil
	}
	return Classification{RiskLevel: models.RiskMinimal, RiskScore: score}, nil
}

type namedFlag struct {
	name  string
	value *bool
}

type namedParam struct {
	name  string
	value *models.ParameterLevel
}

func namedInputs(in ClassificationInput) ([]namedFlag, []namedFlag, []namedParam) {
	p := in.ProhibitedUseFlags
	h := in.HighRiskCategoryFlags
	r := in.RiskParameters

	prohibited := []namedFlag{
		{"prohibitedUseFlags.socialScoring", p.SocialScoring},
		{"prohibitedUseFlags.vulnerabilityExploitation", p.VulnerabilityExploitation},
		{"prohibitedUseFlags.subliminalTechniques", p.SubliminalTechniques},
		{"prohibitedUseFlags.biometricIdentification", p.BiometricIdentification},
	}
	highRisk := []namedFlag{
		{"highRiskCategoryFlags.biometricCategory", h.BiometricCategory},
		{"highRiskCategoryFlags.criticalInfrastructure", h.CriticalInfrastructure},
		{"highRiskCategoryFlags.educationVocational", h.EducationVocational},
		{"highRiskCategoryFlags.employmentWorkManagement", h.EmploymentWorkManagement},
		{"highRiskCategoryFlags.essentialServices", h.EssentialServices},
		{"highRiskCategoryFlags.lawEnforcement", h.LawEnforcement},
		{"highRiskCategoryFlags.migrationAsylumBorder", h.MigrationAsylumBorder},
		{"highRiskCategoryFlags.justiceProcesses", h.JusticeProcesses},
	}
	params := []namedParam{
		{"riskParameters.autonomyLevel", r.AutonomyLevel},
		{"riskParameters.technicalMaturity", r.TechnicalMaturity},
		{"riskParameters.impactSeverity", r.ImpactSeverity},
		{"riskParameters.scaleOfDeployment", r.ScaleOfDeployment},
		{"riskParameters.userVulnerability", r.UserVulnerability},
	}
	return prohibited, highRisk, params
}

func anyTrue(flags []namedFlag) bool {
	for _, f := range flags {
		if *f.value {
			return true
		}
	}
	return false
}

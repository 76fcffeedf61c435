package risk

import (
	"time"

	"ai-risk-registry/internal/models"
)

var assessmentTransitions = map[models.AssessmentStatus][]models.AssessmentStatus{
	models.AssessmentDraft:          {models.AssessmentInProgress},
	models.AssessmentInProgress:     {models.AssessmentCompleted},
	models.AssessmentCompleted:      {models.AssessmentApproved, models.AssessmentRejected, models.AssessmentRequiresUpdate},
	models.AssessmentRequiresUpdate: {models.AssessmentInProgress},
	models.AssessmentApproved:       nil,
	models.AssessmentRejected:       nil,
}

func NextAssessmentStatuses(s models.AssessmentStatus) []models.AssessmentStatus {
	next := assessmentTransitions[s]
	out := make([]models.AssessmentStatus, len(next))
	copy(out, next)
	return out
}

// TransitionAssessment moves the assessment status. Completing an assessment
// classifies it, so an assessment with missing answers cannot be completed.
func (c *Classifier) TransitionAssessment(a *models.RiskAssessment, target models.AssessmentStatus, now time.Time) error {
	if !allowed(assessmentTransitions[a.Status], target) {
		return &InvalidTransitionError{Entity: "assessment", From: string(a.Status), To: string(target)}
	}

	switch target {
	case models.AssessmentCompleted:
		if err := c.Apply(a, now); err != nil {
			return err
		}
		t := now
		a.CompletedAt = &t
	case models.AssessmentApproved:
		if !a.Classified() {
			return &InvalidTransitionError{
				Entity: "assessment", From: string(a.Status), To: string(target),
				Reason: "assessment has no risk level",
			}
		}
	case models.AssessmentDraft, models.AssessmentInProgress,
		models.AssessmentRejected, models.AssessmentRequiresUpdate:
	}

	a.Status = target
	a.UpdatedAt = now
	return nil
}

// Apply classifies the stored answers and writes the result onto the assessment.
// On error the assessment is left untouched.
func (c *Classifier) Apply(a *models.RiskAssessment, now time.Time) error {
	res, err := c.Classify(InputOf(a))
	if err != nil {
		return err
	}
	a.RiskLevel = res.RiskLevel
	a.RiskScore = res.RiskScore
	a.UpdatedAt = now
	return nil
}

package risk

import (
	"time"

	"ai-risk-registry/internal/models"

	"github.com/google/uuid"
)

// gapNamespace scopes the name-based gap ids.
var gapNamespace = uuid.MustParse("5b1e7c0a-3f4d-4c1e-9a63-2d0f6b8e4a71")

// GapID is stable for one (assessment, requirement) pair.
func GapID(assessmentID, requirement string) string {
	return uuid.NewSHA1(gapNamespace, []byte(assessmentID+"/"+requirement)).String()
}

type GapAnalyzer struct {
	catalog *Catalog
}

func NewGapAnalyzer(catalog *Catalog) *GapAnalyzer {
	return &GapAnalyzer{catalog: catalog}
}

// coverage of one requirement by the control set
type coverage int

const (
	coverageNone coverage = iota
	coveragePartial
	coverageFull
)

// Analyze returns the gaps of a classified assessment against the controls of
// the same system. The result depends only on its inputs; an unclassified
// assessment has no gaps yet.
func (a *GapAnalyzer) Analyze(assessment *models.RiskAssessment, controls []models.RiskControl) []models.ComplianceGap {
	if !assessment.Classified() {
		return nil
	}

	var gaps []models.ComplianceGap
	for _, req := range a.catalog.Requirements(assessment.RiskLevel) {
		cov, covering := coverageOf(req, controls)
		if cov == coverageFull {
			continue
		}

		gap := models.ComplianceGap{
			ID:           GapID(assessment.ID, req.ID),
			AssessmentID: assessment.ID,
			SystemID:     assessment.SystemID,
			Requirement:  req.ID,
			Article:      req.Article,
			Title:        req.Title,
			Severity:     req.Severity,
			Status:       models.GapOpen,
		}
		if cov == coveragePartial {
			gap.Partial = true
			gap.Severity = req.Severity.Lower()
			gap.CoveringControlID = covering
		}
		gaps = append(gaps, gap)
	}
	return gaps
}

// coverageOf picks the best corresponding control. Ties keep the first
// control in input order so the covering id is stable.
func coverageOf(req Requirement, controls []models.RiskControl) (coverage, string) {
	best, bestID := coverageNone, ""
	for i := range controls {
		c := &controls[i]
		if c.Category != req.ID || !req.Accepts(c.ControlType) {
			continue
		}
		if !c.ImplementationStatus.InEffect() {
			continue
		}
		switch {
		case c.Effectiveness.Effective():
			return coverageFull, c.ID
		case c.Effectiveness == models.EffectPartiallyEffective && best == coverageNone:
			best, bestID = coveragePartial, c.ID
		}
	}
	return best, bestID
}

// Regenerate merges a freshly analyzed gap set with the stored one.
// The new set replaces the old; only an in_remediation status of a
// requirement that is still uncovered carries over, along with its
// original creation time.
func Regenerate(previous, next []models.ComplianceGap) []models.ComplianceGap {
	prev := make(map[string]models.ComplianceGap, len(previous))
	for _, g := range previous {
		prev[g.Requirement] = g
	}

	out := make([]models.ComplianceGap, len(next))
	for i, g := range next {
		if old, ok := prev[g.Requirement]; ok {
			if old.Status == models.GapInRemediation {
				g.Status = models.GapInRemediation
			}
			g.CreatedAt = old.CreatedAt
		}
		out[i] = g
	}
	return out
}

var gapTransitions = map[models.GapStatus][]models.GapStatus{
	models.GapOpen:          {models.GapInRemediation},
	models.GapInRemediation: {models.GapClosed, models.GapOpen},
	models.GapClosed:        nil,
}

func NextGapStatuses(s models.GapStatus) []models.GapStatus {
	next := gapTransitions[s]
	out := make([]models.GapStatus, len(next))
	copy(out, next)
	return out
}

// TransitionGap applies a remediation status change.
func TransitionGap(gap *models.ComplianceGap, target models.GapStatus, now time.Time) error {
	if !allowed(gapTransitions[gap.Status], target) {
		return &InvalidTransitionError{Entity: "gap", From: string(gap.Status), To: string(target)}
	}
	gap.Status = target
	gap.UpdatedAt = now
	return nil
}

func allowed[S comparable](next []S, target S) bool {
	for _, s := range next {
		if s == target {
			return true
		}
	}
	return false
}

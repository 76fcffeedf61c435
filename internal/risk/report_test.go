package risk

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"ai-risk-registry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func testAggregator(t *testing.T, topN int) *ReportAggregator {
	t.Helper()
	agg, err := NewReportAggregator(testCatalog(t), topN)
	require.NoError(t, err)
	return agg
}

func TestReport_EmptySystem(t *testing.T) {
	rep := testAggregator(t, 0).Build(Snapshot{
		System: &models.AiSystem{ID: "system-1"},
		Now:    reportNow,
	})

	assert.Equal(t, "system-1", rep.SystemID)
	assert.Equal(t, models.RiskUnclassified, rep.RiskLevel)
	assert.False(t, rep.DeploymentBlocked)
	assert.Equal(t, 0, rep.ControlSummary.Total)
	assert.Equal(t, 0, rep.ControlSummary.EffectivenessRate)
	assert.Len(t, rep.ControlSummary.ByStatus, len(models.ControlStatuses))
	assert.Len(t, rep.EventSummary.ByStatus, len(models.EventStatuses))
	assert.Empty(t, rep.TopRisks)
	assert.NotNil(t, rep.TopRisks)
	assert.Equal(t, []string{
		"Complete and classify a risk assessment before planning deployment.",
	}, rep.Recommendations)
	assert.Equal(t, reportNow, rep.GeneratedAt)
}

func TestReport_ControlSummary(t *testing.T) {
	controls := []models.RiskControl{
		control("c1", "transparency", models.ControlTechnical, models.ControlVerified, models.EffectEffective),
		control("c2", "transparency", models.ControlTechnical, models.ControlImplemented, models.EffectVeryEffective),
		control("c3", "transparency", models.ControlTechnical, models.ControlImplemented, models.EffectPartiallyEffective),
		control("c4", "transparency", models.ControlTechnical, models.ControlPlanned, models.EffectNotImplemented),
		control("c5", "transparency", models.ControlTechnical, models.ControlFailed, models.EffectIneffective),
		control("c6", "transparency", models.ControlTechnical, models.ControlInProgress, models.EffectNotImplemented),
	}
	rep := testAggregator(t, 0).Build(Snapshot{Controls: controls, Now: reportNow})

	assert.Equal(t, 6, rep.ControlSummary.Total)
	assert.Equal(t, 33, rep.ControlSummary.EffectivenessRate, "2 of 6 rounds to 33")
	assert.Equal(t, 2, rep.ControlSummary.ByStatus[models.ControlImplemented])
	assert.Equal(t, 1, rep.ControlSummary.ByStatus[models.ControlFailed])
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, percent(0, 0))
	assert.Equal(t, 67, percent(2, 3))
	assert.Equal(t, 50, percent(1, 2))
	assert.Equal(t, 100, percent(4, 4))
}

func TestReport_BlockedSystem(t *testing.T) {
	a := classifiedAssessment(models.RiskUnacceptable)
	a.RiskScore = MaxScore
	rep := testAggregator(t, 0).Build(Snapshot{Assessment: a, Now: reportNow})

	assert.True(t, rep.DeploymentBlocked)
	assert.Equal(t, 25, rep.RiskScore)
	require.NotEmpty(t, rep.Recommendations)
	assert.Contains(t, rep.Recommendations[0], "Deployment blocked")
}

func TestReport_HighRiskRecommendationsOrder(t *testing.T) {
	agg := testAggregator(t, 0)
	a := classifiedAssessment(models.RiskHigh)
	gaps := agg.catalogGaps(t, a)

	events := []models.RiskEvent{
		{ID: "e-low", Title: "minor drift", Severity: models.SeverityLow, Status: models.EventNew, DetectionDate: reportNow},
		{ID: "e-crit", Title: "wrongful rejection", Severity: models.SeverityCritical, Status: models.EventUnderInvestigation, DetectionDate: reportNow},
		{ID: "e-closed", Title: "old", Severity: models.SeverityHigh, Status: models.EventClosed, DetectionDate: reportNow},
	}

	rep := agg.Build(Snapshot{Assessment: a, Gaps: gaps, Events: events, Now: reportNow})

	require.Len(t, rep.Recommendations, 1+7+2)
	assert.Contains(t, rep.Recommendations[0], "risk management system")
	assert.Contains(t, rep.Recommendations[1], "continuous risk management process")
	assert.Contains(t, rep.Recommendations[7], "harden the system")
	assert.Contains(t, rep.Recommendations[8], "critical")
	assert.Contains(t, rep.Recommendations[9], "low-severity")
	assert.Equal(t, 1, rep.EventSummary.OpenCriticalEvents)
	assert.Equal(t, 7, rep.GapSummary.Open)
}

func TestReport_OverdueReview(t *testing.T) {
	past := reportNow.AddDate(0, 0, -1)
	rms := &models.RiskManagementSystem{ID: "rms-1", NextReviewDate: &past}
	a := classifiedAssessment(models.RiskHigh)

	rep := testAggregator(t, 0).Build(Snapshot{Assessment: a, RMS: rms, Now: reportNow})
	assert.True(t, rep.ReviewOverdue)
	assert.Equal(t, []string{
		"The risk management system review is overdue. Perform and record a review.",
	}, rep.Recommendations)
}

func TestReport_PartialGapRecommendation(t *testing.T) {
	gaps := []models.ComplianceGap{{
		ID: "g1", Requirement: "transparency", Article: "Art. 50", Title: "Transparency obligations",
		Severity: models.SeverityLow, Status: models.GapOpen, Partial: true,
	}}
	rep := testAggregator(t, 0).Build(Snapshot{
		Assessment: classifiedAssessment(models.RiskLimited), Gaps: gaps, Now: reportNow,
	})
	assert.Equal(t, []string{
		"Improve the control covering transparency obligations (Art. 50); it is only partially effective.",
	}, rep.Recommendations)
	assert.Equal(t, 1, rep.GapSummary.Partial)
}

func TestReport_TopRisks(t *testing.T) {
	day := func(d int) time.Time { return reportNow.AddDate(0, 0, -d) }
	gaps := []models.ComplianceGap{
		{ID: "g-med", Title: "Record keeping", Severity: models.SeverityMedium, Status: models.GapOpen, CreatedAt: day(1)},
		{ID: "g-high-old", Title: "Data governance", Severity: models.SeverityHigh, Status: models.GapInRemediation, CreatedAt: day(9)},
		{ID: "g-closed", Title: "Risk management", Severity: models.SeverityCritical, Status: models.GapClosed, CreatedAt: day(0)},
		{ID: "g-crit", Title: "Human oversight", Severity: models.SeverityCritical, Status: models.GapOpen, CreatedAt: day(5)},
	}
	events := []models.RiskEvent{
		{ID: "e-high-new", Title: "biased ranking", Severity: models.SeverityHigh, Status: models.EventNew, DetectionDate: day(2)},
		{ID: "e-med", Title: "latency", Severity: models.SeverityMedium, Status: models.EventNew, DetectionDate: day(0)},
		{ID: "e-crit-resolved", Title: "outage", Severity: models.SeverityCritical, Status: models.EventResolved, DetectionDate: day(0)},
	}

	rep := testAggregator(t, 3).Build(Snapshot{Gaps: gaps, Events: events, Now: reportNow})

	var ids []string
	for _, r := range rep.TopRisks {
		ids = append(ids, r.ReferenceID)
	}
	assert.Equal(t, []string{"g-crit", "e-high-new", "g-high-old"}, ids)
	assert.Equal(t, "gap", rep.TopRisks[0].Source)
	assert.Equal(t, "event", rep.TopRisks[1].Source)
	assert.Equal(t, "Missing safeguard: Human oversight", rep.TopRisks[0].Description)
}

func TestReport_TopRisksTieBreak(t *testing.T) {
	var gaps []models.ComplianceGap
	for i := 0; i < 8; i++ {
		gaps = append(gaps, models.ComplianceGap{
			ID: fmt.Sprintf("g%d", i), Severity: models.SeverityHigh, Status: models.GapOpen, CreatedAt: reportNow,
		})
	}
	rep := testAggregator(t, 0).Build(Snapshot{Gaps: gaps, Now: reportNow})
	require.Len(t, rep.TopRisks, DefaultTopRisks)
	assert.Equal(t, "g0", rep.TopRisks[0].ReferenceID)
	assert.Equal(t, "g4", rep.TopRisks[4].ReferenceID)
}

func TestReport_Deterministic(t *testing.T) {
	agg := testAggregator(t, 0)
	a := classifiedAssessment(models.RiskHigh)
	s := Snapshot{Assessment: a, Gaps: agg.catalogGaps(t, a), Now: reportNow}
	assert.Equal(t, agg.Build(s), agg.Build(s))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		code ErrorCode
	}{
		{&InvalidParameterError{Field: "f", Value: "v"}, CodeInvalidParameter},
		{&MissingInputError{Fields: []string{"a"}}, CodeMissingInput},
		{fmt.Errorf("wrapped: %w", &InvalidTransitionError{Entity: "control"}), CodeInvalidTransition},
		{&IncompleteResolutionError{EventID: "e"}, CodeIncompleteResolution},
		{&ConcurrentModificationError{Entity: "control", ID: "c"}, CodeConcurrentModified},
		{&NotFoundError{Entity: "system", ID: "s"}, CodeNotFound},
	}
	for _, tc := range tests {
		code, ok := CodeOf(tc.err)
		assert.True(t, ok)
		assert.Equal(t, tc.code, code)
	}

	_, ok := CodeOf(errors.New("boom"))
	assert.False(t, ok)
}

// catalogGaps analyzes the assessment against no controls.
func (r *ReportAggregator) catalogGaps(t *testing.T, a *models.RiskAssessment) []models.ComplianceGap {
	t.Helper()
	return NewGapAnalyzer(r.catalog).Analyze(a, nil)
}

package service

import (
	"context"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/risk"

	"go.uber.org/zap"
)

// currentAssessment fails when the system has no classified assessment.
func (s *RiskService) currentAssessment(ctx context.Context, systemID string) (*models.RiskAssessment, error) {
	a, err := s.repos.Assessments.Current(ctx, systemID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, &risk.NotFoundError{Entity: "classified assessment for system", ID: systemID}
	}
	return a, nil
}

// AnalyzeGaps regenerates and stores the gap set of the current assessment.
func (s *RiskService) AnalyzeGaps(ctx context.Context, systemID string) ([]models.ComplianceGap, error) {
	if _, err := s.requireSystem(ctx, systemID); err != nil {
		return nil, err
	}
	a, err := s.currentAssessment(ctx, systemID)
	if err != nil {
		return nil, err
	}
	controls, err := s.repos.Controls.ListBySystem(ctx, systemID)
	if err != nil {
		return nil, err
	}

	analyzed := s.analyzer.Analyze(a, controls)
	gaps, err := s.repos.Gaps.Regenerate(ctx, a.ID, func(previous []models.ComplianceGap) []models.ComplianceGap {
		return risk.Regenerate(previous, analyzed)
	})
	if err != nil {
		return nil, err
	}
	if gaps == nil {
		gaps = []models.ComplianceGap{}
	}

	s.metrics.GapAnalyses.WithLabelValues(string(a.RiskLevel)).Inc()
	s.log.Info("gap analysis done",
		zap.String("system_id", systemID), zap.String("assessment_id", a.ID),
		zap.String("risk_level", string(a.RiskLevel)), zap.Int("gaps", len(gaps)))
	s.audit(ctx, systemID, "assessment", a.ID, "analyze_gaps", "")
	return gaps, nil
}

// ListGaps returns the stored gaps of the current assessment, empty when
// the system is not classified yet.
func (s *RiskService) ListGaps(ctx context.Context, systemID string) ([]models.ComplianceGap, error) {
	if _, err := s.requireSystem(ctx, systemID); err != nil {
		return nil, err
	}
	a, err := s.repos.Assessments.Current(ctx, systemID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return []models.ComplianceGap{}, nil
	}
	return s.repos.Gaps.ListByAssessment(ctx, a.ID)
}

type TransitionGapCommand struct {
	EntityID              string           `json:"entityId"`
	ExpectedCurrentStatus models.GapStatus `json:"expectedCurrentStatus"`
	TargetStatus          models.GapStatus `json:"targetStatus"`
}

func (s *RiskService) TransitionGap(ctx context.Context, cmd TransitionGapCommand) (*models.ComplianceGap, error) {
	g, err := s.repos.Gaps.Get(ctx, cmd.EntityID)
	if err != nil {
		return nil, err
	}
	from := g.Status

	err = staleView("gap", g.ID, string(cmd.ExpectedCurrentStatus), string(from))
	if err == nil {
		err = risk.TransitionGap(g, cmd.TargetStatus, s.now())
	}
	if err == nil {
		err = s.repos.Gaps.UpdateStatus(ctx, g, from)
	}
	s.recordTransition("gap", err)
	if err != nil {
		return nil, err
	}

	s.log.Info("gap transitioned",
		zap.String("system_id", g.SystemID), zap.String("gap_id", g.ID),
		zap.String("from", string(from)), zap.String("to", string(g.Status)))
	s.audit(ctx, g.SystemID, "gap", g.ID, "transition", string(from)+" -> "+string(g.Status))
	return g, nil
}

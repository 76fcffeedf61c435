package service

import (
	"context"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/repository"
	"ai-risk-registry/internal/risk"

	"go.uber.org/zap"
)

// GenerateReport reads one snapshot of the system and aggregates it. Gaps are
// recomputed from the current controls and merged with the stored
// remediation state; nothing is written.
func (s *RiskService) GenerateReport(ctx context.Context, systemID string) (risk.ComplianceReport, error) {
	snap, err := s.snapshot(ctx, systemID)
	if err != nil {
		return risk.ComplianceReport{}, err
	}

	rep := s.reports.Build(snap)
	s.metrics.ReportsGenerated.Inc()
	s.log.Info("report generated",
		zap.String("system_id", systemID), zap.String("risk_level", string(rep.RiskLevel)),
		zap.Int("top_risks", len(rep.TopRisks)), zap.Int("recommendations", len(rep.Recommendations)))
	return rep, nil
}

// snapshot reads everything the report needs inside one read transaction.
func (s *RiskService) snapshot(ctx context.Context, systemID string) (risk.Snapshot, error) {
	snap := risk.Snapshot{Now: s.now()}
	err := s.repos.ReadSnapshot(ctx, func(r *repository.Repositories) error {
		var err error
		if snap.System, err = r.Systems.Get(ctx, systemID); err != nil {
			return err
		}
		if snap.RMS, err = r.RMS.GetBySystem(ctx, systemID); err != nil {
			return err
		}
		if snap.Assessment, err = r.Assessments.Current(ctx, systemID); err != nil {
			return err
		}
		if snap.Controls, err = r.Controls.ListBySystem(ctx, systemID); err != nil {
			return err
		}
		if snap.Events, err = r.Events.ListBySystem(ctx, systemID); err != nil {
			return err
		}
		if snap.Assessment == nil {
			return nil
		}
		stored, err := r.Gaps.ListByAssessment(ctx, snap.Assessment.ID)
		if err != nil {
			return err
		}
		snap.Gaps = mergeClosed(stored, risk.Regenerate(stored, s.analyzer.Analyze(snap.Assessment, snap.Controls)))
		return nil
	})
	if err != nil {
		return risk.Snapshot{}, err
	}
	return snap, nil
}

// mergeClosed keeps stored closed gaps in the report so the summary counts them.
func mergeClosed(stored, live []models.ComplianceGap) []models.ComplianceGap {
	seen := make(map[string]bool, len(live))
	for _, g := range live {
		seen[g.Requirement] = true
	}
	out := live
	for _, g := range stored {
		if g.Status == models.GapClosed && !seen[g.Requirement] {
			out = append(out, g)
		}
	}
	return out
}

func (s *RiskService) ListAuditLogs(ctx context.Context, f repository.AuditFilter) ([]models.AuditLog, error) {
	return s.repos.Audit.List(ctx, f)
}

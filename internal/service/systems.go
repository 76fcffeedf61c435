package service

import (
	"context"
	"fmt"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/risk"

	"go.uber.org/zap"
)

//
// SYSTEMS
//

type SystemInput struct {
	Name       string `json:"name"`
	Purpose    string `json:"purpose"`
	Department string `json:"department"`
	Vendor     string `json:"vendor"`
	Version    string `json:"version"`
}

func (s *RiskService) RegisterSystem(ctx context.Context, in SystemInput) (*models.AiSystem, error) {
	sys := &models.AiSystem{
		Name:       in.Name,
		Purpose:    in.Purpose,
		Department: in.Department,
		Vendor:     in.Vendor,
		Version:    in.Version,
	}
	if err := s.repos.Systems.Create(ctx, sys); err != nil {
		return nil, err
	}

	s.log.Info("system registered", zap.String("system_id", sys.ID), zap.String("name", sys.Name))
	s.audit(ctx, sys.ID, "system", sys.ID, "create", "registered "+sys.Name)
	return sys, nil
}

func (s *RiskService) GetSystem(ctx context.Context, id string) (*models.AiSystem, error) {
	return s.repos.Systems.Get(ctx, id)
}

func (s *RiskService) ListSystems(ctx context.Context) ([]models.AiSystem, error) {
	return s.repos.Systems.List(ctx)
}

//
// ASSESSMENTS
//

type AssessmentInput struct {
	ProhibitedUseFlags    models.ProhibitedUseFlags    `json:"prohibitedUseFlags"`
	HighRiskCategoryFlags models.HighRiskCategoryFlags `json:"highRiskCategoryFlags"`
	RiskParameters        models.RiskParameters        `json:"riskParameters"`
	AssessedBy            string                       `json:"assessedBy"`
	Notes                 string                       `json:"notes"`
}

// CreateAssessment stores the answers as a draft. Incomplete answers are
// accepted here; they only block classification.
func (s *RiskService) CreateAssessment(ctx context.Context, systemID string, in AssessmentInput) (*models.RiskAssessment, error) {
	if _, err := s.requireSystem(ctx, systemID); err != nil {
		return nil, err
	}
	if in.AssessedBy == "" {
		if a, ok := actorFrom(ctx); ok {
			in.AssessedBy = a.Username
		}
	}

	a := &models.RiskAssessment{
		SystemID:              systemID,
		ProhibitedUseFlags:    in.ProhibitedUseFlags,
		HighRiskCategoryFlags: in.HighRiskCategoryFlags,
		RiskParameters:        in.RiskParameters,
		Status:                models.AssessmentDraft,
		AssessedBy:            in.AssessedBy,
		Notes:                 in.Notes,
	}
	if err := s.repos.Assessments.Create(ctx, a); err != nil {
		return nil, err
	}

	s.log.Info("assessment created", zap.String("system_id", systemID), zap.String("assessment_id", a.ID))
	s.audit(ctx, systemID, "assessment", a.ID, "create", "")
	return a, nil
}

func (s *RiskService) GetAssessment(ctx context.Context, id string) (*models.RiskAssessment, error) {
	return s.repos.Assessments.Get(ctx, id)
}

func (s *RiskService) ListAssessments(ctx context.Context, systemID string) ([]models.RiskAssessment, error) {
	if _, err := s.requireSystem(ctx, systemID); err != nil {
		return nil, err
	}
	return s.repos.Assessments.ListBySystem(ctx, systemID)
}

// Preview classifies answers without storing anything.
func (s *RiskService) Preview(in risk.ClassificationInput) (risk.Classification, error) {
	return s.classifier.Classify(in)
}

// ClassifyAssessment recomputes the tier from the stored answers, persists it
// and refreshes the tier cached on the system.
func (s *RiskService) ClassifyAssessment(ctx context.Context, id string) (*models.RiskAssessment, error) {
	a, err := s.repos.Assessments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == models.AssessmentApproved || a.Status == models.AssessmentRejected {
		return nil, &risk.InvalidTransitionError{
			Entity: "assessment", From: string(a.Status), To: string(a.Status),
			Reason: "a decided assessment cannot be re-classified",
		}
	}

	now := s.now()
	if err := s.classifier.Apply(a, now); err != nil {
		s.log.Info("classification refused", zap.String("assessment_id", id), zap.Error(err))
		return nil, err
	}
	if err := s.repos.Assessments.Update(ctx, a, a.Status); err != nil {
		return nil, err
	}
	s.countClassification(a)
	if err := s.refreshSystemTier(ctx, a.SystemID); err != nil {
		return nil, err
	}

	s.audit(ctx, a.SystemID, "assessment", a.ID, "classify",
		fmt.Sprintf("risk level %s, score %d", a.RiskLevel, a.RiskScore))
	return a, nil
}

type TransitionAssessmentCommand struct {
	EntityID              string                  `json:"entityId"`
	ExpectedCurrentStatus models.AssessmentStatus `json:"expectedCurrentStatus"`
	TargetStatus          models.AssessmentStatus `json:"targetStatus"`
}

func (s *RiskService) TransitionAssessment(ctx context.Context, cmd TransitionAssessmentCommand) (*models.RiskAssessment, error) {
	a, err := s.repos.Assessments.Get(ctx, cmd.EntityID)
	if err != nil {
		return nil, err
	}
	from := a.Status

	err = staleView("assessment", a.ID, string(cmd.ExpectedCurrentStatus), string(from))
	if err == nil {
		err = s.classifier.TransitionAssessment(a, cmd.TargetStatus, s.now())
	}
	if err == nil {
		err = s.repos.Assessments.Update(ctx, a, from)
	}
	s.recordTransition("assessment", err)
	if err != nil {
		s.log.Info("assessment transition refused",
			zap.String("assessment_id", cmd.EntityID),
			zap.String("from", string(from)), zap.String("to", string(cmd.TargetStatus)), zap.Error(err))
		return nil, err
	}

	if a.Status == models.AssessmentCompleted {
		s.countClassification(a)
	}
	if err := s.refreshSystemTier(ctx, a.SystemID); err != nil {
		return nil, err
	}

	s.log.Info("assessment transitioned",
		zap.String("system_id", a.SystemID), zap.String("assessment_id", a.ID),
		zap.String("from", string(from)), zap.String("to", string(a.Status)))
	s.audit(ctx, a.SystemID, "assessment", a.ID, "transition", string(from)+" -> "+string(a.Status))
	return a, nil
}

func (s *RiskService) countClassification(a *models.RiskAssessment) {
	s.metrics.Classifications.WithLabelValues(string(a.RiskLevel)).Inc()
	s.log.Info("assessment classified",
		zap.String("system_id", a.SystemID), zap.String("assessment_id", a.ID),
		zap.String("risk_level", string(a.RiskLevel)), zap.Int("risk_score", a.RiskScore))
}

// refreshSystemTier re-derives the tier cached on the system from the
// assessment currently in effect, the same one gaps and reports use. The
// cache is cleared when no assessment is in effect.
func (s *RiskService) refreshSystemTier(ctx context.Context, systemID string) error {
	current, err := s.repos.Assessments.Current(ctx, systemID)
	if err != nil {
		return err
	}
	if current == nil {
		s.log.Debug("no assessment in effect", zap.String("system_id", systemID))
		return s.repos.Systems.SetClassification(ctx, systemID, "", 0, s.now())
	}
	return s.repos.Systems.SetClassification(ctx, systemID, current.RiskLevel, current.RiskScore, current.UpdatedAt)
}

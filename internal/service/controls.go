package service

import (
	"context"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/risk"

	"go.uber.org/zap"
)

type ControlInput struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	ControlType models.ControlType `json:"controlType"`
	Category    string             `json:"category"`
	Owner       string             `json:"owner"`
	RelatedGaps []string           `json:"relatedGaps"`
}

func (s *RiskService) CreateControl(ctx context.Context, systemID string, in ControlInput) (*models.RiskControl, error) {
	if _, err := s.requireSystem(ctx, systemID); err != nil {
		return nil, err
	}

	c := &models.RiskControl{
		SystemID:             systemID,
		Name:                 in.Name,
		Description:          in.Description,
		ControlType:          in.ControlType,
		Category:             in.Category,
		Owner:                in.Owner,
		ImplementationStatus: models.ControlPlanned,
		Effectiveness:        models.EffectNotImplemented,
		Attempt:              1,
		RelatedGaps:          in.RelatedGaps,
	}
	if err := s.repos.Controls.Create(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("control created",
		zap.String("system_id", systemID), zap.String("control_id", c.ID), zap.String("category", c.Category))
	s.audit(ctx, systemID, "control", c.ID, "create", c.Name)
	return c, nil
}

func (s *RiskService) ListControls(ctx context.Context, systemID string) ([]models.RiskControl, error) {
	if _, err := s.requireSystem(ctx, systemID); err != nil {
		return nil, err
	}
	return s.repos.Controls.ListBySystem(ctx, systemID)
}

func (s *RiskService) TransitionControl(ctx context.Context, cmd risk.TransitionControlCommand) (*models.RiskControl, error) {
	return s.mutateControl(ctx, cmd.EntityID, cmd.ExpectedCurrentStatus, "transition", func(c *models.RiskControl) error {
		return risk.TransitionControl(c, cmd.TargetStatus, s.now())
	})
}

func (s *RiskService) SetControlEffectiveness(ctx context.Context, id string, e models.Effectiveness) (*models.RiskControl, error) {
	return s.mutateControl(ctx, id, "", "effectiveness", func(c *models.RiskControl) error {
		return risk.SetEffectiveness(c, e, s.now())
	})
}

// ResetControl starts a new implementation attempt of a verified or failed control.
func (s *RiskService) ResetControl(ctx context.Context, id string) (*models.RiskControl, error) {
	return s.mutateControl(ctx, id, "", "reset", func(c *models.RiskControl) error {
		return risk.ResetControl(c, s.now())
	})
}

// mutateControl reads the control, applies fn and writes it back with a
// compare-and-swap on the status and attempt it read.
func (s *RiskService) mutateControl(ctx context.Context, id string, expected models.ControlStatus, action string, fn func(*models.RiskControl) error) (*models.RiskControl, error) {
	c, err := s.repos.Controls.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from, attempt := c.ImplementationStatus, c.Attempt

	err = staleView("control", c.ID, string(expected), string(from))
	if err == nil {
		err = fn(c)
	}
	if err == nil {
		err = s.repos.Controls.Update(ctx, c, from, attempt)
	}
	s.recordTransition("control", err)
	if err != nil {
		s.log.Info("control change refused",
			zap.String("control_id", id), zap.String("action", action),
			zap.String("from", string(from)), zap.Error(err))
		return nil, err
	}

	s.log.Info("control changed",
		zap.String("system_id", c.SystemID), zap.String("control_id", c.ID), zap.String("action", action),
		zap.String("from", string(from)), zap.String("to", string(c.ImplementationStatus)),
		zap.String("effectiveness", string(c.Effectiveness)))
	s.audit(ctx, c.SystemID, "control", c.ID, action,
		string(from)+" -> "+string(c.ImplementationStatus)+", effectiveness "+string(c.Effectiveness))
	return c, nil
}

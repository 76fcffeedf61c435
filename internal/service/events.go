package service

import (
	"context"
	"time"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/risk"

	"go.uber.org/zap"
)

type EventInput struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	EventType     string          `json:"eventType"`
	Severity      models.Severity `json:"severity"`
	DetectionDate *time.Time      `json:"detectionDate"`
}

func (s *RiskService) RecordEvent(ctx context.Context, systemID string, in EventInput) (*models.RiskEvent, error) {
	if _, err := s.requireSystem(ctx, systemID); err != nil {
		return nil, err
	}

	e := &models.RiskEvent{
		SystemID:    systemID,
		Title:       in.Title,
		Description: in.Description,
		EventType:   in.EventType,
		Severity:    in.Severity,
		Status:      models.EventNew,
	}
	if in.DetectionDate != nil {
		e.DetectionDate = in.DetectionDate.UTC()
	} else {
		e.DetectionDate = s.now()
	}
	if err := s.repos.Events.Create(ctx, e); err != nil {
		return nil, err
	}

	s.log.Info("risk event recorded",
		zap.String("system_id", systemID), zap.String("event_id", e.ID), zap.String("severity", string(e.Severity)))
	s.audit(ctx, systemID, "event", e.ID, "create", string(e.Severity)+": "+e.Title)
	return e, nil
}

func (s *RiskService) ListEvents(ctx context.Context, systemID string) ([]models.RiskEvent, error) {
	if _, err := s.requireSystem(ctx, systemID); err != nil {
		return nil, err
	}
	return s.repos.Events.ListBySystem(ctx, systemID)
}

func (s *RiskService) TransitionEvent(ctx context.Context, cmd risk.TransitionEventCommand) (*models.RiskEvent, error) {
	e, err := s.repos.Events.Get(ctx, cmd.EntityID)
	if err != nil {
		return nil, err
	}
	from := e.Status

	err = staleView("event", e.ID, string(cmd.ExpectedCurrentStatus), string(from))
	if err == nil {
		err = risk.TransitionEvent(e, cmd.TargetStatus, cmd.ResolutionNote, cmd.RootCause, s.now())
	}
	if err == nil {
		err = s.repos.Events.Update(ctx, e, from)
	}
	s.recordTransition("event", err)
	if err != nil {
		s.log.Info("event transition refused",
			zap.String("event_id", cmd.EntityID),
			zap.String("from", string(from)), zap.String("to", string(cmd.TargetStatus)), zap.Error(err))
		return nil, err
	}

	s.log.Info("event transitioned",
		zap.String("system_id", e.SystemID), zap.String("event_id", e.ID),
		zap.String("from", string(from)), zap.String("to", string(e.Status)))
	s.audit(ctx, e.SystemID, "event", e.ID, "transition", string(from)+" -> "+string(e.Status))
	return e, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/risk"

	"go.uber.org/zap"
)

type RMSInput struct {
	Status         models.RMSStatus   `json:"status"`
	ReviewCycle    models.ReviewCycle `json:"reviewCycle"`
	Owner          string             `json:"owner"`
	Scope          string             `json:"scope"`
	NextReviewDate *time.Time         `json:"nextReviewDate"`
}

// RMSUpdate carries the version the caller read.
type RMSUpdate struct {
	RMSInput
	Version int `json:"version"`
}

func (s *RiskService) CreateRMS(ctx context.Context, systemID string, in RMSInput) (*models.RiskManagementSystem, error) {
	if _, err := s.requireSystem(ctx, systemID); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.RMSActive
	}

	rms := &models.RiskManagementSystem{
		SystemID:       systemID,
		Status:         in.Status,
		ReviewCycle:    in.ReviewCycle,
		Owner:          in.Owner,
		Scope:          in.Scope,
		NextReviewDate: in.NextReviewDate,
	}
	if rms.NextReviewDate == nil && in.ReviewCycle.Valid() {
		next := s.now().AddDate(0, in.ReviewCycle.Months(), 0)
		rms.NextReviewDate = &next
	}
	if err := s.repos.RMS.Create(ctx, rms); err != nil {
		return nil, err
	}

	s.log.Info("rms created", zap.String("system_id", systemID), zap.String("rms_id", rms.ID))
	s.audit(ctx, systemID, "rms", rms.ID, "create", "")
	return rms, nil
}

// RMSView is an RMS with its review state as of the read.
type RMSView struct {
	RMS           *models.RiskManagementSystem `json:"rms"`
	ReviewOverdue bool                         `json:"reviewOverdue"`
}

func (s *RiskService) GetRMS(ctx context.Context, systemID string) (RMSView, error) {
	rms, err := s.loadRMS(ctx, systemID)
	if err != nil {
		return RMSView{}, err
	}
	return RMSView{RMS: rms, ReviewOverdue: rms.ReviewOverdue(s.now())}, nil
}

func (s *RiskService) loadRMS(ctx context.Context, systemID string) (*models.RiskManagementSystem, error) {
	rms, err := s.repos.RMS.GetBySystem(ctx, systemID)
	if err != nil {
		return nil, err
	}
	if rms == nil {
		return nil, &risk.NotFoundError{Entity: "rms for system", ID: systemID}
	}
	return rms, nil
}

func (s *RiskService) UpdateRMS(ctx context.Context, systemID string, in RMSUpdate) (*models.RiskManagementSystem, error) {
	rms, err := s.loadRMS(ctx, systemID)
	if err != nil {
		return nil, err
	}

	if in.Status != "" {
		rms.Status = in.Status
	}
	if in.ReviewCycle != "" {
		rms.ReviewCycle = in.ReviewCycle
	}
	rms.Owner = in.Owner
	rms.Scope = in.Scope
	if in.NextReviewDate != nil {
		rms.NextReviewDate = in.NextReviewDate
	}

	return s.writeRMS(ctx, rms, in.Version, "update")
}

// RecordReview stamps a review today and schedules the next one from the cycle.
func (s *RiskService) RecordReview(ctx context.Context, systemID string, version int) (*models.RiskManagementSystem, error) {
	rms, err := s.loadRMS(ctx, systemID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next := now.AddDate(0, rms.ReviewCycle.Months(), 0)
	rms.LastReviewDate = &now
	rms.NextReviewDate = &next
	rms.Status = models.RMSActive

	return s.writeRMS(ctx, rms, version, "review")
}

func (s *RiskService) writeRMS(ctx context.Context, rms *models.RiskManagementSystem, version int, action string) (*models.RiskManagementSystem, error) {
	err := s.repos.RMS.Update(ctx, rms, version)
	s.recordTransition("rms", err)
	if err != nil {
		s.log.Info("rms write refused",
			zap.String("system_id", rms.SystemID), zap.Int("version", version), zap.Error(err))
		return nil, err
	}

	s.log.Info("rms written",
		zap.String("system_id", rms.SystemID), zap.String("action", action), zap.Int("version", rms.Version))
	s.audit(ctx, rms.SystemID, "rms", rms.ID, action, fmt.Sprintf("version %d", rms.Version))
	return rms, nil
}

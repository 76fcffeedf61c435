package repository

import (
	"context"
	"errors"
	"fmt"

	"ai-risk-registry/internal/models"

	"gorm.io/gorm"
)

type assessmentRepo struct {
	db *gorm.DB
}

func (r *assessmentRepo) Create(ctx context.Context, a *models.RiskAssessment) error {
	if err := validate(a); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

func (r *assessmentRepo) Get(ctx context.Context, id string) (*models.RiskAssessment, error) {
	return getByID[models.RiskAssessment](ctx, r.db, "assessment", id)
}

func (r *assessmentRepo) ListBySystem(ctx context.Context, systemID string) ([]models.RiskAssessment, error) {
	out, err := listBySystem[models.RiskAssessment](ctx, r.db, systemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return out, nil
}

func (r *assessmentRepo) Current(ctx context.Context, systemID string) (*models.RiskAssessment, error) {
	var a models.RiskAssessment
	err := r.db.WithContext(ctx).
		Where("system_id = ? AND risk_level IS NOT NULL AND risk_level <> ''", systemID).
		Where("status <> ?", models.AssessmentRejected).
		Order("updated_at DESC, id").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load current assessment: %w", err)
	}
	return &a, nil
}

func (r *assessmentRepo) Update(ctx context.Context, a *models.RiskAssessment, expected models.AssessmentStatus) error {
	if err := validate(a); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(a).
		Where("status = ?", expected).
		Select("*").Omit("created_at", "system_id").
		Updates(a)
	if res.Error != nil {
		return fmt.Errorf("failed to update assessment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return staleOrMissing(ctx, r.db, &models.RiskAssessment{}, "assessment", a.ID, "status", string(expected))
	}
	return nil
}

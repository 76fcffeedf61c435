package repository

import (
	"context"
	"fmt"
	"time"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/risk"

	"gorm.io/gorm"
)

type systemRepo struct {
	db *gorm.DB
}

func (r *systemRepo) Create(ctx context.Context, s *models.AiSystem) error {
	if err := validate(s); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("failed to create system: %w", err)
	}
	return nil
}

func (r *systemRepo) Get(ctx context.Context, id string) (*models.AiSystem, error) {
	return getByID[models.AiSystem](ctx, r.db, "system", id)
}

func (r *systemRepo) List(ctx context.Context) ([]models.AiSystem, error) {
	out := []models.AiSystem{}
	if err := r.db.WithContext(ctx).Order("name, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list systems: %w", err)
	}
	return out, nil
}

// SetClassification overwrites the cached tier. An empty level clears it.
func (r *systemRepo) SetClassification(ctx context.Context, id string, level models.RiskLevel, score int, at time.Time) error {
	var classifiedAt *time.Time
	if level != "" {
		classifiedAt = &at
	}
	res := r.db.WithContext(ctx).Model(&models.AiSystem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"risk_level":    level,
			"risk_score":    score,
			"classified_at": classifiedAt,
			"updated_at":    at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update system classification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &risk.NotFoundError{Entity: "system", ID: id}
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"ai-risk-registry/internal/models"

	"gorm.io/gorm"
)

type controlRepo struct {
	db *gorm.DB
}

func (r *controlRepo) Create(ctx context.Context, c *models.RiskControl) error {
	if err := validate(c); err != nil {
		return err
	}
	if c.RelatedGaps == nil {
		c.RelatedGaps = []string{}
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create control: %w", err)
	}
	return nil
}

func (r *controlRepo) Get(ctx context.Context, id string) (*models.RiskControl, error) {
	return getByID[models.RiskControl](ctx, r.db, "control", id)
}

func (r *controlRepo) ListBySystem(ctx context.Context, systemID string) ([]models.RiskControl, error) {
	out, err := listBySystem[models.RiskControl](ctx, r.db, systemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list controls: %w", err)
	}
	return out, nil
}

// Update applies c only if the stored control is still in the expected
// status and implementation cycle.
func (r *controlRepo) Update(ctx context.Context, c *models.RiskControl, expected models.ControlStatus, expectedAttempt int) error {
	if err := validate(c); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(c).
		Where("implementation_status = ? AND attempt = ?", expected, expectedAttempt).
		Select("*").Omit("created_at", "system_id").
		Updates(c)
	if res.Error != nil {
		return fmt.Errorf("failed to update control: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return staleOrMissing(ctx, r.db, &models.RiskControl{}, "control", c.ID, "implementation_status", string(expected))
	}
	return nil
}

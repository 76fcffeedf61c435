package repository

import (
	"context"
	"fmt"

	"ai-risk-registry/internal/models"

	"gorm.io/gorm"
)

type eventRepo struct {
	db *gorm.DB
}

func (r *eventRepo) Create(ctx context.Context, e *models.RiskEvent) error {
	if err := validate(e); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *eventRepo) Get(ctx context.Context, id string) (*models.RiskEvent, error) {
	return getByID[models.RiskEvent](ctx, r.db, "event", id)
}

func (r *eventRepo) ListBySystem(ctx context.Context, systemID string) ([]models.RiskEvent, error) {
	out, err := listBySystem[models.RiskEvent](ctx, r.db, systemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) Update(ctx context.Context, e *models.RiskEvent, expected models.EventStatus) error {
	if err := validate(e); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(e).
		Where("status = ?", expected).
		Select("*").Omit("created_at", "system_id").
		Updates(e)
	if res.Error != nil {
		return fmt.Errorf("failed to update event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return staleOrMissing(ctx, r.db, &models.RiskEvent{}, "event", e.ID, "status", string(expected))
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/risk"

	"gorm.io/gorm"
)

type rmsRepo struct {
	db *gorm.DB
}

func (r *rmsRepo) Create(ctx context.Context, rms *models.RiskManagementSystem) error {
	if err := validate(rms); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []string
		if err := tx.Model(&models.RiskManagementSystem{}).
			Where("system_id = ?", rms.SystemID).
			Pluck("id", &existing).Error; err != nil {
			return fmt.Errorf("failed to check rms: %w", err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: %w", ErrRMSExists, &risk.ConcurrentModificationError{
				Entity: "rms", ID: existing[0], Expected: "no rms for system " + rms.SystemID,
			})
		}
		if err := tx.Create(rms).Error; err != nil {
			return fmt.Errorf("failed to create rms: %w", err)
		}
		return nil
	})
}

func (r *rmsRepo) GetBySystem(ctx context.Context, systemID string) (*models.RiskManagementSystem, error) {
	var rms models.RiskManagementSystem
	err := r.db.WithContext(ctx).Where("system_id = ?", systemID).First(&rms).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rms: %w", err)
	}
	return &rms, nil
}

// Update writes rms if the stored version still equals expectedVersion and
// bumps the version. On success rms.Version holds the new version.
func (r *rmsRepo) Update(ctx context.Context, rms *models.RiskManagementSystem, expectedVersion int) error {
	if err := validate(rms); err != nil {
		return err
	}
	next := *rms
	next.Version = expectedVersion + 1

	res := r.db.WithContext(ctx).Model(&next).
		Where("system_id = ? AND version = ?", rms.SystemID, expectedVersion).
		Select("*").Omit("created_at", "system_id").
		Updates(&next)
	if res.Error != nil {
		return fmt.Errorf("failed to update rms: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return staleOrMissing(ctx, r.db, &models.RiskManagementSystem{}, "rms", rms.ID, "version", strconv.Itoa(expectedVersion))
	}
	*rms = next
	return nil
}

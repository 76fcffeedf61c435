package repository

import (
	"context"
	"fmt"

	"ai-risk-registry/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gapRepo struct {
	db *gorm.DB
}

func (r *gapRepo) Get(ctx context.Context, id string) (*models.ComplianceGap, error) {
	return getByID[models.ComplianceGap](ctx, r.db, "gap", id)
}

func (r *gapRepo) ListByAssessment(ctx context.Context, assessmentID string) ([]models.ComplianceGap, error) {
	out := []models.ComplianceGap{}
	err := r.db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("created_at, requirement").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list gaps: %w", err)
	}
	return out, nil
}

func (r *gapRepo) Replace(ctx context.Context, assessmentID string, gaps []models.ComplianceGap) error {
	if err := checkGaps(assessmentID, gaps); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceGaps(tx, assessmentID, gaps)
	})
}

// Regenerate reads the stored set under a row lock, lets merge build the new
// set from it and replaces the stored set in the same transaction. A status
// change committed before the lock is taken is seen by merge; one attempted
// after waits for the commit and then runs its own compare-and-swap.
func (r *gapRepo) Regenerate(ctx context.Context, assessmentID string, merge func(previous []models.ComplianceGap) []models.ComplianceGap) ([]models.ComplianceGap, error) {
	var out []models.ComplianceGap
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		previous := []models.ComplianceGap{}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("assessment_id = ?", assessmentID).
			Order("created_at, requirement").
			Find(&previous).Error; err != nil {
			return fmt.Errorf("failed to lock gaps: %w", err)
		}

		out = merge(previous)
		if err := checkGaps(assessmentID, out); err != nil {
			return err
		}
		return replaceGaps(tx, assessmentID, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func checkGaps(assessmentID string, gaps []models.ComplianceGap) error {
	for i := range gaps {
		if gaps[i].AssessmentID != assessmentID {
			return fmt.Errorf("gap %s belongs to assessment %s, not %s", gaps[i].ID, gaps[i].AssessmentID, assessmentID)
		}
		if err := validate(&gaps[i]); err != nil {
			return err
		}
	}
	return nil
}

func replaceGaps(tx *gorm.DB, assessmentID string, gaps []models.ComplianceGap) error {
	if err := tx.Where("assessment_id = ?", assessmentID).Delete(&models.ComplianceGap{}).Error; err != nil {
		return fmt.Errorf("failed to clear gaps: %w", err)
	}
	if len(gaps) == 0 {
		return nil
	}
	if err := tx.Create(&gaps).Error; err != nil {
		return fmt.Errorf("failed to store gaps: %w", err)
	}
	return nil
}

func (r *gapRepo) UpdateStatus(ctx context.Context, g *models.ComplianceGap, expected models.GapStatus) error {
	res := r.db.WithContext(ctx).Model(&models.ComplianceGap{}).
		Where("id = ? AND status = ?", g.ID, expected).
		Updates(map[string]any{"status": g.Status, "updated_at": g.UpdatedAt})
	if res.Error != nil {
		return fmt.Errorf("failed to update gap: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return staleOrMissing(ctx, r.db, &models.ComplianceGap{}, "gap", g.ID, "status", string(expected))
	}
	return nil
}

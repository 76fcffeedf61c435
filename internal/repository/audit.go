package repository

import (
	"context"
	"fmt"

	"ai-risk-registry/internal/database"
	"ai-risk-registry/internal/models"

	"gorm.io/gorm"
)

type auditRepo struct {
	db *gorm.DB
}

const defaultAuditLimit = 200

func (r *auditRepo) Record(ctx context.Context, entry *models.AuditLog) error {
	return database.CreateAuditLog(ctx, r.db, entry)
}

func (r *auditRepo) List(ctx context.Context, f AuditFilter) ([]models.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 || limit > defaultAuditLimit {
		limit = defaultAuditLimit
	}

	q := r.db.WithContext(ctx).Preload("User").Order("created_at DESC, id DESC").Limit(limit)
	if f.SystemID != "" {
		q = q.Where("system_id = ?", f.SystemID)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}

	logs := []models.AuditLog{}
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

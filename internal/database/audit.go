package database

import (
	"context"
	"fmt"

	"ai-risk-registry/internal/models"

	"gorm.io/gorm"
)

// CreateAuditLog appends one journal entry.
func CreateAuditLog(ctx context.Context, db *gorm.DB, entry *models.AuditLog) error {
	if db == nil {
		return nil
	}
	if entry.Entity == "" || entry.Action == "" {
		return fmt.Errorf("audit entry needs an entity and an action")
	}
	return db.WithContext(ctx).Create(entry).Error
}

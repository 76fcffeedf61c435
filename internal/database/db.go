package database

import (
	"context"
	"fmt"
	"time"

	"ai-risk-registry/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxAttempts  = 10
	retryBackoff = 2 * time.Second
)

// Open connects to Postgres, retrying while the database container starts up.
func Open(ctx context.Context, dsn string, log *zap.Logger) (*gorm.DB, error) {
	return OpenWith(ctx, postgres.Open(dsn), log, maxAttempts, retryBackoff)
}

// OpenWith connects through any gorm dialector.
func OpenWith(ctx context.Context, dialector gorm.Dialector, log *zap.Logger, attempts int, backoff time.Duration) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= attempts; i++ {
		log.Info("connecting to database", zap.Int("attempt", i), zap.Int("max_attempts", attempts))

		db, err = gorm.Open(dialector, cfg)
		if err == nil {
			log.Info("connected to database")
			return db, nil
		}
		log.Warn("failed to connect to database", zap.Error(err))

		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, fmt.Errorf("failed to connect to db after %d attempts: %w", attempts, err)
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.AiSystem{},
		&models.RiskAssessment{},
		&models.RiskManagementSystem{},
		&models.RiskControl{},
		&models.RiskEvent{},
		&models.ComplianceGap{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// SeedAdmin creates the admin account once; an existing admin is left alone.
func SeedAdmin(ctx context.Context, db *gorm.DB, username, password string, log *zap.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := models.Validate(&admin); err != nil {
		return err
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	log.Info("created default admin user", zap.String("username", username))
	return nil
}

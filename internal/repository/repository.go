// Package repository persists the registry entities with gorm.
// Every write validates the entity first; state changes are compare-and-swap
// updates so a stale caller gets a ConcurrentModificationError instead of
// overwriting a newer state.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/risk"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var ErrRMSExists = errors.New("risk management system already exists")

type SystemRepository interface {
	Create(ctx context.Context, s *models.AiSystem) error
	Get(ctx context.Context, id string) (*models.AiSystem, error)
	List(ctx context.Context) ([]models.AiSystem, error)
	SetClassification(ctx context.Context, id string, level models.RiskLevel, score int, at time.Time) error
}

type AssessmentRepository interface {
	Create(ctx context.Context, a *models.RiskAssessment) error
	Get(ctx context.Context, id string) (*models.RiskAssessment, error)
	ListBySystem(ctx context.Context, systemID string) ([]models.RiskAssessment, error)
	// Current is the most recently updated classified assessment, nil if none.
	Current(ctx context.Context, systemID string) (*models.RiskAssessment, error)
	Update(ctx context.Context, a *models.RiskAssessment, expected models.AssessmentStatus) error
}

type RMSRepository interface {
	Create(ctx context.Context, r *models.RiskManagementSystem) error
	// GetBySystem returns nil, nil when the system has no RMS yet.
	GetBySystem(ctx context.Context, systemID string) (*models.RiskManagementSystem, error)
	Update(ctx context.Context, r *models.RiskManagementSystem, expectedVersion int) error
}

type ControlRepository interface {
	Create(ctx context.Context, c *models.RiskControl) error
	Get(ctx context.Context, id string) (*models.RiskControl, error)
	ListBySystem(ctx context.Context, systemID string) ([]models.RiskControl, error)
	Update(ctx context.Context, c *models.RiskControl, expected models.ControlStatus, expectedAttempt int) error
}

type EventRepository interface {
	Create(ctx context.Context, e *models.RiskEvent) error
	Get(ctx context.Context, id string) (*models.RiskEvent, error)
	ListBySystem(ctx context.Context, systemID string) ([]models.RiskEvent, error)
	Update(ctx context.Context, e *models.RiskEvent, expected models.EventStatus) error
}

type GapRepository interface {
	Get(ctx context.Context, id string) (*models.ComplianceGap, error)
	ListByAssessment(ctx context.Context, assessmentID string) ([]models.ComplianceGap, error)
	// Replace swaps the whole gap set of one assessment atomically.
	Replace(ctx context.Context, assessmentID string, gaps []models.ComplianceGap) error
	// Regenerate derives the new set from the stored one and swaps it in one
	// transaction.
	Regenerate(ctx context.Context, assessmentID string, merge func(previous []models.ComplianceGap) []models.ComplianceGap) ([]models.ComplianceGap, error)
	UpdateStatus(ctx context.Context, g *models.ComplianceGap, expected models.GapStatus) error
}

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

type AuditFilter struct {
	SystemID string
	Entity   string
	Limit    int
}

type AuditRepository interface {
	Record(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, f AuditFilter) ([]models.AuditLog, error)
}

// Repositories bundles the gorm implementations over one connection.
type Repositories struct {
	Systems     SystemRepository
	Assessments AssessmentRepository
	RMS         RMSRepository
	Controls    ControlRepository
	Events      EventRepository
	Gaps        GapRepository
	Users       UserRepository
	Audit       AuditRepository

	db *gorm.DB
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Systems:     &systemRepo{db: db},
		Assessments: &assessmentRepo{db: db},
		RMS:         &rmsRepo{db: db},
		Controls:    &controlRepo{db: db},
		Events:      &eventRepo{db: db},
		Gaps:        &gapRepo{db: db},
		Users:       &userRepo{db: db},
		Audit:       &auditRepo{db: db},
		db:          db,
	}
}

// ReadSnapshot runs fn against repositories bound to one read transaction so
// every read sees the same committed state.
func (r *Repositories) ReadSnapshot(ctx context.Context, fn func(*Repositories) error) error {
	run := func(tx *gorm.DB) error { return fn(New(tx)) }
	// sqlite transactions are serializable already
	if r.db.Dialector.Name() != "postgres" {
		return r.db.WithContext(ctx).Transaction(run)
	}
	return r.db.WithContext(ctx).Transaction(run, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

// validate maps validator failures onto InvalidParameterError.
func validate(entity any) error {
	err := models.Validate(entity)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &risk.InvalidParameterError{
			Field: fe.Field(),
			Value: fmt.Sprintf("%v (%s)", fe.Value(), fe.Tag()),
		}
	}
	return err
}

func getByID[T any](ctx context.Context, db *gorm.DB, entity, id string) (*T, error) {
	var out T
	err := db.WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &risk.NotFoundError{Entity: entity, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %s: %w", entity, id, err)
	}
	return &out, nil
}

func listBySystem[T any](ctx context.Context, db *gorm.DB, systemID string) ([]T, error) {
	out := []T{}
	err := db.WithContext(ctx).
		Where("system_id = ?", systemID).
		Order("created_at, id").
		Find(&out).Error
	return out, err
}

// staleOrMissing explains a compare-and-swap that matched no row.
func staleOrMissing(ctx context.Context, db *gorm.DB, model any, entity, id, column, expected string) error {
	var actual []string
	err := db.WithContext(ctx).Model(model).Where("id = ?", id).Limit(1).Pluck(column, &actual).Error
	if err != nil {
		return fmt.Errorf("failed to re-read %s %s: %w", entity, id, err)
	}
	if len(actual) == 0 {
		return &risk.NotFoundError{Entity: entity, ID: id}
	}
	return &risk.ConcurrentModificationError{Entity: entity, ID: id, Expected: expected, Actual: actual[0]}
}

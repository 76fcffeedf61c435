// Package service runs the registry operations: each call reads one snapshot,
// applies the engine and writes at most one entity state.
package service

import (
	"context"
	"errors"
	"time"

	"ai-risk-registry/internal/metrics"
	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/repository"
	"ai-risk-registry/internal/risk"

	"go.uber.org/zap"
)

type RiskService struct {
	repos      *repository.Repositories
	classifier *risk.Classifier
	analyzer   *risk.GapAnalyzer
	reports    *risk.ReportAggregator
	metrics    *metrics.Metrics
	log        *zap.Logger
	now        func() time.Time
}

type Option func(*RiskService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *RiskService) { s.now = now }
}

func New(
	repos *repository.Repositories,
	classifier *risk.Classifier,
	catalog *risk.Catalog,
	reports *risk.ReportAggregator,
	m *metrics.Metrics,
	log *zap.Logger,
	opts ...Option,
) *RiskService {
	s := &RiskService{
		repos:      repos,
		classifier: classifier,
		analyzer:   risk.NewGapAnalyzer(catalog),
		reports:    reports,
		metrics:    m,
		log:        log.Named("risk-service"),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

//
// ACTOR
//

// Actor is the authenticated user a call is made for.
type Actor struct {
	UserID   uint
	Username string
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func actorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

//
// HELPERS
//

// audit appends a journal entry; a failing journal never fails the operation.
func (s *RiskService) audit(ctx context.Context, systemID, entity, entityID, action, details string) {
	entry := &models.AuditLog{
		SystemID: systemID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	if a, ok := actorFrom(ctx); ok {
		id := a.UserID
		entry.UserID = &id
	}
	if err := s.repos.Audit.Record(ctx, entry); err != nil {
		s.log.Warn("failed to write audit log",
			zap.String("entity", entity), zap.String("entity_id", entityID), zap.Error(err))
	}
}

func transitionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, risk.ErrConcurrentModified):
		return "conflict"
	default:
		return "rejected"
	}
}

func (s *RiskService) recordTransition(entity string, err error) {
	s.metrics.Transition(entity, transitionResult(err))
}

// requireSystem fails with NotFoundError for unknown ids.
func (s *RiskService) requireSystem(ctx context.Context, systemID string) (*models.AiSystem, error) {
	return s.repos.Systems.Get(ctx, systemID)
}

// staleView rejects a command whose expected status no longer matches.
func staleView(entity, id, expected, actual string) error {
	if expected == "" || expected == actual {
		return nil
	}
	return &risk.ConcurrentModificationError{Entity: entity, ID: id, Expected: expected, Actual: actual}
}

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-risk-registry/internal/database"
	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/risk"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenWith(context.Background(), sqlite.Open(":memory:"), zap.NewNop(), 1, 0)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection, one in-memory database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedSystem(t *testing.T, repos *Repositories) *models.AiSystem {
	t.Helper()
	s := &models.AiSystem{Name: "CV screening", Purpose: "rank job applicants", Department: "HR"}
	require.NoError(t, repos.Systems.Create(context.Background(), s))
	return s
}

func newControl(systemID string) *models.RiskControl {
	return &models.RiskControl{
		SystemID:             systemID,
		Name:                 "Reviewer sign-off",
		ControlType:          models.ControlOrganizational,
		Category:             "human-oversight",
		ImplementationStatus: models.ControlPlanned,
		Effectiveness:        models.EffectNotImplemented,
	}
}

func TestSystems(t *testing.T) {
	ctx := context.Background()
	repos := New(testDB(t))

	s := seedSystem(t, repos)
	assert.Len(t, s.ID, 36)

	got, err := repos.Systems.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "CV screening", got.Name)
	assert.Empty(t, got.RiskLevel)

	now := time.Now().UTC()
	require.NoError(t, repos.Systems.SetClassification(ctx, s.ID, models.RiskHigh, 14, now))
	got, err = repos.Systems.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RiskHigh, got.RiskLevel)
	assert.Equal(t, 14, got.RiskScore)

	_, err = repos.Systems.Get(ctx, "missing")
	var nf *risk.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "system", nf.Entity)

	assert.ErrorIs(t, repos.Systems.SetClassification(ctx, "missing", models.RiskHigh, 1, now), risk.ErrNotFound)

	require.NoError(t, repos.Systems.SetClassification(ctx, s.ID, "", 0, now))
	got, err = repos.Systems.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.RiskLevel)
	assert.Nil(t, got.ClassifiedAt)

	all, err := repos.Systems.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSystems_Validation(t *testing.T) {
	repos := New(testDB(t))
	err := repos.Systems.Create(context.Background(), &models.AiSystem{Name: "x"})
	var ipe *risk.InvalidParameterError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "name", ipe.Field)
}

func TestAssessments_RoundTripKeepsAbsence(t *testing.T) {
	ctx := context.Background()
	repos := New(testDB(t))
	s := seedSystem(t, repos)

	yes, no := true, false
	medium := models.LevelMedium
	a := &models.RiskAssessment{
		SystemID: s.ID,
		Status:   models.AssessmentDraft,
		ProhibitedUseFlags: models.ProhibitedUseFlags{
			SocialScoring: &no,
		},
		HighRiskCategoryFlags: models.HighRiskCategoryFlags{
			EmploymentWorkManagement: &yes,
		},
		RiskParameters: models.RiskParameters{ImpactSeverity: &medium},
	}
	require.NoError(t, repos.Assessments.Create(ctx, a))

	got, err := repos.Assessments.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ProhibitedUseFlags.SocialScoring)
	assert.False(t, *got.ProhibitedUseFlags.SocialScoring)
	assert.Nil(t, got.ProhibitedUseFlags.BiometricIdentification, "absent stays absent")
	require.NotNil(t, got.HighRiskCategoryFlags.EmploymentWorkManagement)
	assert.True(t, *got.HighRiskCategoryFlags.EmploymentWorkManagement)
	assert.Equal(t, models.LevelMedium, *got.RiskParameters.ImpactSeverity)
	assert.Nil(t, got.RiskParameters.AutonomyLevel)

	current, err := repos.Assessments.Current(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, current, "nothing classified yet")
}

func TestAssessments_UpdateIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repos := New(testDB(t))
	s := seedSystem(t, repos)

	a := &models.RiskAssessment{SystemID: s.ID, Status: models.AssessmentDraft}
	require.NoError(t, repos.Assessments.Create(ctx, a))

	a.Status = models.AssessmentInProgress
	a.RiskLevel = models.RiskMinimal
	a.RiskScore = 9
	require.NoError(t, repos.Assessments.Update(ctx, a, models.AssessmentDraft))

	stale := *a
	stale.Status = models.AssessmentCompleted
	err := repos.Assessments.Update(ctx, &stale, models.AssessmentDraft)
	var cme *risk.ConcurrentModificationError
	require.ErrorAs(t, err, &cme)
	assert.Equal(t, string(models.AssessmentInProgress), cme.Actual)

	current, err := repos.Assessments.Current(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, a.ID, current.ID)
	assert.Equal(t, 9, current.RiskScore)
}

func TestRMS_OptimisticVersion(t *testing.T) {
	ctx := context.Background()
	repos := New(testDB(t))
	s := seedSystem(t, repos)

	rms := &models.RiskManagementSystem{
		SystemID: s.ID, Status: models.RMSActive, ReviewCycle: models.CycleQuarterly, Owner: "risk office",
	}
	require.NoError(t, repos.RMS.Create(ctx, rms))
	assert.Equal(t, 1, rms.Version)

	err := repos.RMS.Create(ctx, &models.RiskManagementSystem{
		SystemID: s.ID, Status: models.RMSActive, ReviewCycle: models.CycleAnnual,
	})
	assert.ErrorIs(t, err, ErrRMSExists)
	assert.ErrorIs(t, err, risk.ErrConcurrentModified)

	// two writers read version 1
	first, err := repos.RMS.GetBySystem(ctx, s.ID)
	require.NoError(t, err)
	second := *first

	first.Owner = "alice"
	require.NoError(t, repos.RMS.Update(ctx, first, 1))
	assert.Equal(t, 2, first.Version)

	second.Owner = "bob"
	err = repos.RMS.Update(ctx, &second, 1)
	var cme *risk.ConcurrentModificationError
	require.ErrorAs(t, err, &cme)
	assert.Equal(t, "1", cme.Expected)
	assert.Equal(t, "2", cme.Actual)

	stored, err := repos.RMS.GetBySystem(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Owner, "no last-writer-wins")
	assert.Equal(t, 2, stored.Version)

	none, err := repos.RMS.GetBySystem(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestControls_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repos := New(testDB(t))
	s := seedSystem(t, repos)

	c := newControl(s.ID)
	require.NoError(t, repos.Controls.Create(ctx, c))
	assert.Equal(t, 1, c.Attempt)

	c.ImplementationStatus = models.ControlInProgress
	c.RelatedGaps = []string{"gap-1"}
	require.NoError(t, repos.Controls.Update(ctx, c, models.ControlPlanned, 1))

	got, err := repos.Controls.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ControlInProgress, got.ImplementationStatus)
	assert.Equal(t, []string{"gap-1"}, got.RelatedGaps)

	got.ImplementationStatus = models.ControlFailed
	err = repos.Controls.Update(ctx, got, models.ControlPlanned, 1)
	assert.ErrorIs(t, err, risk.ErrConcurrentModified)

	missing := newControl(s.ID)
	missing.ID = "nope"
	assert.ErrorIs(t, repos.Controls.Update(ctx, missing, models.ControlPlanned, 1), risk.ErrNotFound)
}

func TestControls_ConcurrentTransitionsOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	repos := New(testDB(t))
	s := seedSystem(t, repos)
	c := newControl(s.ID)
	require.NoError(t, repos.Controls.Create(ctx, c))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mine := *c
			mine.ImplementationStatus = models.ControlInProgress
			err := repos.Controls.Update(ctx, &mine, models.ControlPlanned, 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if assert.ErrorIs(t, err, risk.ErrConcurrentModified) {
				conflicts++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
	assert.Equal(t, 3, conflicts)
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	repos := New(testDB(t))
	s := seedSystem(t, repos)

	e := &models.RiskEvent{
		SystemID: s.ID, Title: "Biased shortlist", EventType: "bias",
		Severity: models.SeverityHigh, Status: models.EventNew, DetectionDate: time.Now().UTC(),
	}
	require.NoError(t, repos.Events.Create(ctx, e))

	e.Status = models.EventUnderInvestigation
	require.NoError(t, repos.Events.Update(ctx, e, models.EventNew))
	assert.ErrorIs(t, repos.Events.Update(ctx, e, models.EventNew), risk.ErrConcurrentModified)

	list, err := repos.Events.ListBySystem(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.EventUnderInvestigation, list[0].Status)
}

func TestGaps_ReplaceAndTransition(t *testing.T) {
	ctx := context.Background()
	repos := New(testDB(t))

	gap := func(req string) models.ComplianceGap {
		return models.ComplianceGap{
			ID: risk.GapID("a1", req), AssessmentID: "a1", SystemID: "s1", Requirement: req,
			Severity: models.SeverityHigh, Status: models.GapOpen,
		}
	}
	require.NoError(t, repos.Gaps.Replace(ctx, "a1", []models.ComplianceGap{gap("transparency"), gap("record-keeping")}))
	require.NoError(t, repos.Gaps.Replace(ctx, "a1", []models.ComplianceGap{gap("transparency")}))

	gaps, err := repos.Gaps.ListByAssessment(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.Equal(t, "transparency", gaps[0].Requirement)

	g := gaps[0]
	g.Status = models.GapInRemediation
	require.NoError(t, repos.Gaps.UpdateStatus(ctx, &g, models.GapOpen))
	assert.ErrorIs(t, repos.Gaps.UpdateStatus(ctx, &g, models.GapOpen), risk.ErrConcurrentModified)

	require.NoError(t, repos.Gaps.Replace(ctx, "a1", nil))
	gaps, err = repos.Gaps.ListByAssessment(ctx, "a1")
	require.NoError(t, err)
	assert.Empty(t, gaps)

	assert.Error(t, repos.Gaps.Replace(ctx, "a2", []models.ComplianceGap{gap("transparency")}))
}

func TestGaps_RegenerateSeesCommittedStatus(t *testing.T) {
	ctx := context.Background()
	repos := New(testDB(t))

	gap := func(req string, st models.GapStatus) models.ComplianceGap {
		return models.ComplianceGap{
			ID: risk.GapID("a1", req), AssessmentID: "a1", SystemID: "s1", Requirement: req,
			Severity: models.SeverityHigh, Status: st,
		}
	}
	require.NoError(t, repos.Gaps.Replace(ctx, "a1", []models.ComplianceGap{
		gap("transparency", models.GapOpen), gap("record-keeping", models.GapOpen),
	}))

	g, err := repos.Gaps.Get(ctx, risk.GapID("a1", "transparency"))
	require.NoError(t, err)
	g.Status = models.GapInRemediation
	require.NoError(t, repos.Gaps.UpdateStatus(ctx, g, models.GapOpen))

	var seen []models.ComplianceGap
	out, err := repos.Gaps.Regenerate(ctx, "a1", func(previous []models.ComplianceGap) []models.ComplianceGap {
		seen = previous
		return risk.Regenerate(previous, []models.ComplianceGap{gap("transparency", models.GapOpen)})
	})
	require.NoError(t, err)
	require.Len(t, seen, 2)
	require.Len(t, out, 1)
	assert.Equal(t, models.GapInRemediation, out[0].Status)

	stored, err := repos.Gaps.ListByAssessment(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.GapInRemediation, stored[0].Status)

	// a merge producing a foreign gap rolls the whole swap back
	_, err = repos.Gaps.Regenerate(ctx, "a1", func([]models.ComplianceGap) []models.ComplianceGap {
		return []models.ComplianceGap{{ID: "x", AssessmentID: "a2", Requirement: "transparency"}}
	})
	assert.Error(t, err)
	stored, err = repos.Gaps.ListByAssessment(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestReadSnapshot(t *testing.T) {
	ctx := context.Background()
	repos := New(testDB(t))
	s := seedSystem(t, repos)
	require.NoError(t, repos.Controls.Create(ctx, newControl(s.ID)))

	err := repos.ReadSnapshot(ctx, func(r *Repositories) error {
		got, err := r.Systems.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.Name, got.Name)

		controls, err := r.Controls.ListBySystem(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, controls, 1)
		return nil
	})
	require.NoError(t, err)

	err = repos.ReadSnapshot(ctx, func(r *Repositories) error {
		_, err := r.Systems.Get(ctx, "missing")
		return err
	})
	assert.ErrorIs(t, err, risk.ErrNotFound)
}

func TestUsersAndAudit(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repos := New(db)

	require.NoError(t, database.SeedAdmin(ctx, db, "admin@risk.local", "Admin123!", zap.NewNop()))
	require.NoError(t, database.SeedAdmin(ctx, db, "other@risk.local", "x", zap.NewNop()), "second seed is a no-op")

	admin, err := repos.Users.GetByUsername(ctx, "admin@risk.local")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	_, err = repos.Users.GetByUsername(ctx, "other@risk.local")
	assert.ErrorIs(t, err, risk.ErrNotFound)

	byID, err := repos.Users.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.Username, byID.Username)

	require.NoError(t, repos.Audit.Record(ctx, &models.AuditLog{
		UserID: &admin.ID, SystemID: "s1", Entity: "control", EntityID: "c1", Action: "transition",
	}))
	require.NoError(t, repos.Audit.Record(ctx, &models.AuditLog{
		SystemID: "s2", Entity: "system", EntityID: "s2", Action: "create",
	}))
	assert.Error(t, repos.Audit.Record(ctx, &models.AuditLog{EntityID: "x"}))

	logs, err := repos.Audit.List(ctx, AuditFilter{SystemID: "s1"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].User)
	assert.Equal(t, "admin@risk.local", logs[0].User.Username)

	logs, err = repos.Audit.List(ctx, AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-risk-registry/internal/config"
	"ai-risk-registry/internal/database"
	"ai-risk-registry/internal/handlers"
	"ai-risk-registry/internal/metrics"
	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/repository"
	"ai-risk-registry/internal/risk"
	"ai-risk-registry/internal/server"
	"ai-risk-registry/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const password = "Secret123!"

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenWith(context.Background(), sqlite.Open(":memory:"), zap.NewNop(), 1, 0)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedAdmin(context.Background(), db, "admin@risk.local", password, zap.NewNop()))

	catalog, err := risk.NewCatalog()
	require.NoError(t, err)
	classifier, err := risk.NewClassifier(risk.DefaultLimitedThreshold)
	require.NoError(t, err)
	reports, err := risk.NewReportAggregator(catalog, 0)
	require.NoError(t, err)

	cfg := &config.Config{SessionSecret: "test-secret", AppEnv: "test"}
	m := metrics.New(prometheus.NewRegistry())
	repos := repository.New(db)
	svc := service.New(repos, classifier, catalog, reports, m, zap.NewNop())
	h := handlers.New(svc, repos.Users, zap.NewNop())

	return &testServer{router: server.NewRouter(cfg, h, repos.Users, m, zap.NewNop()), db: db}
}

func (s *testServer) addUser(t *testing.T, username string, role models.UserRole) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, s.db.Create(&models.User{Username: username, PasswordHash: string(hash), Role: role}).Error)
}

type client struct {
	t       *testing.T
	srv     *testServer
	cookies []*http.Cookie
}

func (s *testServer) login(t *testing.T, username string) *client {
	t.Helper()
	c := &client{t: t, srv: s}
	w := c.do(http.MethodPost, "/api/v1/auth/login", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c.cookies = w.Result().Cookies()
	return c
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.srv.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type apiError struct {
	Error struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Fields  []string `json:"fields"`
	} `json:"error"`
}

func allAnswers(level string) gin.H {
	return gin.H{
		"prohibitedUseFlags": gin.H{
			"socialScoring": false, "vulnerabilityExploitation": false,
			"subliminalTechniques": false, "biometricIdentification": false,
		},
		"highRiskCategoryFlags": gin.H{
			"biometricCategory": false, "criticalInfrastructure": false, "educationVocational": false,
			"employmentWorkManagement": true, "essentialServices": false, "lawEnforcement": false,
			"migrationAsylumBorder": false, "justiceProcesses": false,
		},
		"riskParameters": gin.H{
			"autonomyLevel": level, "technicalMaturity": level, "impactSeverity": level,
			"scaleOfDeployment": level, "userVulnerability": level,
		},
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	anon := &client{t: t, srv: s}

	w := anon.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = anon.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "risk_registry_http_requests_total")
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)
	anon := &client{t: t, srv: s}

	w := anon.do(http.MethodGet, "/api/v1/systems", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = anon.do(http.MethodPost, "/api/v1/auth/login", gin.H{"username": "admin@risk.local", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = anon.do(http.MethodPost, "/api/v1/auth/login", gin.H{"username": "nobody", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	admin := s.login(t, "admin@risk.local")
	w = admin.do(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode[map[string]any](t, w)["role"])
}

func TestClassifyPreview(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@risk.local")

	w := admin.do(http.MethodPost, "/api/v1/classify", allAnswers("medium"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[risk.Classification](t, w)
	assert.Equal(t, models.RiskHigh, res.RiskLevel)
	assert.Equal(t, 15, res.RiskScore)

	in := allAnswers("medium")
	delete(in["riskParameters"].(gin.H), "impactSeverity")
	w = admin.do(http.MethodPost, "/api/v1/classify", in)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.NotContains(t, body, "riskLevel", "no tier on a classification error")
	apiErr := decode[apiError](t, w)
	assert.Equal(t, "MISSING_INPUT", apiErr.Error.Code)
	assert.Equal(t, []string{"riskParameters.impactSeverity"}, apiErr.Error.Fields)

	w = admin.do(http.MethodPost, "/api/v1/classify", allAnswers("extreme"))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_PARAMETER", decode[apiError](t, w).Error.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range admin.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoleGating(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "viewer@risk.local", models.RoleViewer)
	s.addUser(t, "eng@risk.local", models.RoleEngineer)

	viewer := s.login(t, "viewer@risk.local")
	w := viewer.do(http.MethodPost, "/api/v1/systems", gin.H{"name": "Chatbot"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = viewer.do(http.MethodGet, "/api/v1/audit", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	eng := s.login(t, "eng@risk.local")
	w = eng.do(http.MethodGet, "/api/v1/audit", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = eng.do(http.MethodPost, "/api/v1/systems", gin.H{"name": "Chatbot"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEndToEnd(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@risk.local")

	// register and assess
	w := admin.do(http.MethodPost, "/api/v1/systems", gin.H{"name": "CV screening", "department": "HR"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sys := decode[models.AiSystem](t, w)

	w = admin.do(http.MethodPost, "/api/v1/systems/"+sys.ID+"/assessments", allAnswers("medium"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a := decode[models.RiskAssessment](t, w)
	assert.Equal(t, models.AssessmentDraft, a.Status)

	w = admin.do(http.MethodPost, "/api/v1/assessments/"+a.ID+"/transition", gin.H{"targetStatus": "completed"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode[apiError](t, w).Error.Code)

	for _, target := range []string{"in_progress", "completed"} {
		w = admin.do(http.MethodPost, "/api/v1/assessments/"+a.ID+"/transition", gin.H{"targetStatus": target})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	a = decode[models.RiskAssessment](t, w)
	assert.Equal(t, models.RiskHigh, a.RiskLevel)

	// gaps
	w = admin.do(http.MethodPost, "/api/v1/systems/"+sys.ID+"/gaps/analyze", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	gaps := decode[struct {
		Gaps []models.ComplianceGap `json:"gaps"`
	}](t, w).Gaps
	assert.Len(t, gaps, 7)

	// controls
	w = admin.do(http.MethodPost, "/api/v1/systems/"+sys.ID+"/controls", gin.H{
		"name": "Recruiter review", "controlType": "organizational", "category": "human-oversight",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ctrl := decode[models.RiskControl](t, w)

	w = admin.do(http.MethodPost, "/api/v1/controls/"+ctrl.ID+"/transition", gin.H{"targetStatus": "verified"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode[apiError](t, w).Error.Message, "Allowed next states: in_progress, failed")

	w = admin.do(http.MethodPost, "/api/v1/controls/"+ctrl.ID+"/transition", gin.H{
		"expectedCurrentStatus": "planned", "targetStatus": "in_progress",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = admin.do(http.MethodPost, "/api/v1/controls/"+ctrl.ID+"/transition", gin.H{
		"expectedCurrentStatus": "planned", "targetStatus": "failed",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONCURRENT_MODIFICATION", decode[apiError](t, w).Error.Code)

	// events
	w = admin.do(http.MethodPost, "/api/v1/systems/"+sys.ID+"/events", gin.H{
		"title": "Qualified applicants rejected", "eventType": "bias", "severity": "critical",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ev := decode[models.RiskEvent](t, w)

	w = admin.do(http.MethodPost, "/api/v1/events/"+ev.ID+"/transition", gin.H{"targetStatus": "under_investigation"})
	require.Equal(t, http.StatusOK, w.Code)
	w = admin.do(http.MethodPost, "/api/v1/events/"+ev.ID+"/transition", gin.H{"targetStatus": "resolved"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INCOMPLETE_RESOLUTION", decode[apiError](t, w).Error.Code)

	// rms
	w = admin.do(http.MethodPost, "/api/v1/systems/"+sys.ID+"/rms", gin.H{"reviewCycle": "quarterly", "owner": "risk office"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = admin.do(http.MethodPost, "/api/v1/systems/"+sys.ID+"/rms", gin.H{"reviewCycle": "annual"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = admin.do(http.MethodPut, "/api/v1/systems/"+sys.ID+"/rms", gin.H{"reviewCycle": "annual", "owner": "cro", "version": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = admin.do(http.MethodPost, "/api/v1/systems/"+sys.ID+"/rms/review", gin.H{"version": 1})
	assert.Equal(t, http.StatusConflict, w.Code, "stale version")

	// report
	w = admin.do(http.MethodGet, "/api/v1/systems/"+sys.ID+"/report", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rep := decode[risk.ComplianceReport](t, w)
	assert.Equal(t, models.RiskHigh, rep.RiskLevel)
	assert.Equal(t, 1, rep.ControlSummary.Total)
	assert.Equal(t, 1, rep.ControlSummary.ByStatus[models.ControlInProgress])
	assert.Equal(t, 1, rep.EventSummary.OpenCriticalEvents)
	assert.Equal(t, 7, rep.GapSummary.Open)
	assert.NotEmpty(t, rep.Recommendations)

	w = admin.do(http.MethodGet, "/api/v1/systems/missing/report", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// audit trail
	w = admin.do(http.MethodGet, "/api/v1/audit?systemId="+sys.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[struct {
		Logs []models.AuditLog `json:"logs"`
	}](t, w).Logs
	assert.NotEmpty(t, logs)

	w = admin.do(http.MethodGet, "/api/v1/audit?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package server

import (
	"net/http"

	"ai-risk-registry/internal/config"
	"ai-risk-registry/internal/handlers"
	"ai-risk-registry/internal/metrics"
	"ai-risk-registry/internal/middleware"
	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionName = "risk_session"

func NewRouter(cfg *config.Config, h *handlers.Handler, users repository.UserRepository, m *metrics.Metrics, log *zap.Logger) *gin.Engine {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log.Named("http")), m.Middleware())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   8 * 3600,
		HttpOnly: true,
		Secure:   cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(middleware.InjectUser(users))

	// HEALTHCHECK / METRICS
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api/v1")

	// AUTH
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)

	auth := api.Group("/")
	auth.Use(middleware.RequireAuth())

	auth.GET("/auth/me", h.Me)

	// roles per area
	officers := middleware.RequireRole(models.RoleAdmin, models.RoleOfficer)
	operators := middleware.RequireRole(models.RoleAdmin, models.RoleOfficer, models.RoleEngineer)

	auth.POST("/classify", h.Classify)

	// SYSTEMS
	auth.GET("/systems", h.ListSystems)
	auth.POST("/systems", officers, h.CreateSystem)
	auth.GET("/systems/:id", h.GetSystem)
	auth.GET("/systems/:id/report", h.Report)

	// ASSESSMENTS
	auth.GET("/systems/:id/assessments", h.ListAssessments)
	auth.POST("/systems/:id/assessments", officers, h.CreateAssessment)
	auth.GET("/assessments/:id", h.GetAssessment)
	auth.POST("/assessments/:id/classify", officers, h.ClassifyAssessment)
	auth.POST("/assessments/:id/transition", officers, h.TransitionAssessment)

	// GAPS
	auth.GET("/systems/:id/gaps", h.ListGaps)
	auth.POST("/systems/:id/gaps/analyze", officers, h.AnalyzeGaps)
	auth.POST("/gaps/:id/transition", officers, h.TransitionGap)

	// RMS
	auth.GET("/systems/:id/rms", h.GetRMS)
	auth.POST("/systems/:id/rms", officers, h.CreateRMS)
	auth.PUT("/systems/:id/rms", officers, h.UpdateRMS)
	auth.POST("/systems/:id/rms/review", officers, h.RecordReview)

	// CONTROLS
	auth.GET("/systems/:id/controls", h.ListControls)
	auth.POST("/systems/:id/controls", operators, h.CreateControl)
	auth.POST("/controls/:id/transition", operators, h.TransitionControl)
	auth.POST("/controls/:id/effectiveness", operators, h.SetControlEffectiveness)
	auth.POST("/controls/:id/reset", operators, h.ResetControl)

	// EVENTS
	auth.GET("/systems/:id/events", h.ListEvents)
	auth.POST("/systems/:id/events", operators, h.RecordEvent)
	auth.POST("/events/:id/transition", operators, h.TransitionEvent)

	// AUDIT
	auth.GET("/audit", middleware.RequireRole(models.RoleAdmin, models.RoleViewer), h.ListAuditLogs)

	return r
}

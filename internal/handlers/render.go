package handlers

import (
	"errors"
	"net/http"
	"strings"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/repository"
	"ai-risk-registry/internal/risk"
	"ai-risk-registry/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc   *service.RiskService
	users repository.UserRepository
	log   *zap.Logger
}

func New(svc *service.RiskService, users repository.UserRepository, log *zap.Logger) *Handler {
	return &Handler{svc: svc, users: users, log: log.Named("http")}
}

type errorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// renderError maps the error taxonomy onto a status and an actionable message.
// A classification error never carries a tier.
func (h *Handler) renderError(c *gin.Context, err error) {
	status, body := describe(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

func describe(err error) (int, errorBody) {
	var (
		missing    *risk.MissingInputError
		invalid    *risk.InvalidParameterError
		transition *risk.InvalidTransitionError
		resolution *risk.IncompleteResolutionError
		conflict   *risk.ConcurrentModificationError
		notFound   *risk.NotFoundError
	)

	switch {
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity, errorBody{
			Code:    string(missing.Code()),
			Message: "Answer every question before classifying. Missing: " + strings.Join(missing.Fields, ", "),
			Fields:  missing.Fields,
		}
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity, errorBody{
			Code:    string(invalid.Code()),
			Message: "Fix the value of " + invalid.Field + ": " + invalid.Error(),
			Fields:  []string{invalid.Field},
		}
	case errors.As(err, &transition):
		msg := transition.Error()
		if next := nextStates(transition); next != "" {
			msg += ". Allowed next states: " + next
		}
		return http.StatusConflict, errorBody{Code: string(transition.Code()), Message: msg}
	case errors.As(err, &resolution):
		return http.StatusUnprocessableEntity, errorBody{
			Code:    string(resolution.Code()),
			Message: "Describe how the event was resolved in resolutionNote before resolving it.",
			Fields:  []string{"resolutionNote"},
		}
	case errors.As(err, &conflict):
		return http.StatusConflict, errorBody{
			Code:    string(conflict.Code()),
			Message: conflict.Error() + ". Reload it and retry.",
		}
	case errors.As(err, &notFound):
		return http.StatusNotFound, errorBody{Code: string(notFound.Code()), Message: notFound.Error()}
	}
	return http.StatusInternalServerError, errorBody{Code: "INTERNAL", Message: "internal error"}
}

func nextStates(e *risk.InvalidTransitionError) string {
	var next []string
	switch e.Entity {
	case "control":
		for _, s := range risk.NextControlStatuses(models.ControlStatus(e.From)) {
			next = append(next, string(s))
		}
	case "event":
		for _, s := range risk.NextEventStatuses(models.EventStatus(e.From)) {
			next = append(next, string(s))
		}
	case "assessment":
		for _, s := range risk.NextAssessmentStatuses(models.AssessmentStatus(e.From)) {
			next = append(next, string(s))
		}
	case "gap":
		for _, s := range risk.NextGapStatuses(models.GapStatus(e.From)) {
			next = append(next, string(s))
		}
	}
	return strings.Join(next, ", ")
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": errorBody{
		Code:    "BAD_REQUEST",
		Message: "Malformed request body: " + err.Error(),
	}})
}

// bind decodes the JSON body; on failure the response is already written.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

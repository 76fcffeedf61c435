package handlers

import (
	"net/http"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/risk"
	"ai-risk-registry/internal/service"

	"github.com/gin-gonic/gin"
)

//
// SYSTEMS
//

func (h *Handler) CreateSystem(c *gin.Context) {
	var in service.SystemInput
	if !bind(c, &in) {
		return
	}
	sys, err := h.svc.RegisterSystem(c.Request.Context(), in)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sys)
}

func (h *Handler) ListSystems(c *gin.Context) {
	systems, err := h.svc.ListSystems(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"systems": systems})
}

func (h *Handler) GetSystem(c *gin.Context) {
	sys, err := h.svc.GetSystem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, sys)
}

//
// CLASSIFICATION
//

// Classify previews a classification without storing it.
func (h *Handler) Classify(c *gin.Context) {
	var in risk.ClassificationInput
	if !bind(c, &in) {
		return
	}
	res, err := h.svc.Preview(in)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

//
// ASSESSMENTS
//

func (h *Handler) CreateAssessment(c *gin.Context) {
	var in service.AssessmentInput
	if !bind(c, &in) {
		return
	}
	a, err := h.svc.CreateAssessment(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAssessments(c *gin.Context) {
	list, err := h.svc.ListAssessments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": list})
}

func (h *Handler) GetAssessment(c *gin.Context) {
	a, err := h.svc.GetAssessment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) ClassifyAssessment(c *gin.Context) {
	a, err := h.svc.ClassifyAssessment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type assessmentTransitionRequest struct {
	ExpectedCurrentStatus models.AssessmentStatus `json:"expectedCurrentStatus"`
	TargetStatus          models.AssessmentStatus `json:"targetStatus" binding:"required"`
}

func (h *Handler) TransitionAssessment(c *gin.Context) {
	var req assessmentTransitionRequest
	if !bind(c, &req) {
		return
	}
	a, err := h.svc.TransitionAssessment(c.Request.Context(), service.TransitionAssessmentCommand{
		EntityID:              c.Param("id"),
		ExpectedCurrentStatus: req.ExpectedCurrentStatus,
		TargetStatus:          req.TargetStatus,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

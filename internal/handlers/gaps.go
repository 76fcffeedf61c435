package handlers

import (
	"net/http"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AnalyzeGaps(c *gin.Context) {
	gaps, err := h.svc.AnalyzeGaps(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gaps": gaps})
}

func (h *Handler) ListGaps(c *gin.Context) {
	gaps, err := h.svc.ListGaps(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gaps": gaps})
}

type gapTransitionRequest struct {
	ExpectedCurrentStatus models.GapStatus `json:"expectedCurrentStatus"`
	TargetStatus          models.GapStatus `json:"targetStatus" binding:"required"`
}

func (h *Handler) TransitionGap(c *gin.Context) {
	var req gapTransitionRequest
	if !bind(c, &req) {
		return
	}
	g, err := h.svc.TransitionGap(c.Request.Context(), service.TransitionGapCommand{
		EntityID:              c.Param("id"),
		ExpectedCurrentStatus: req.ExpectedCurrentStatus,
		TargetStatus:          req.TargetStatus,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

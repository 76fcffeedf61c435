package handlers

import (
	"net/http"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/risk"
	"ai-risk-registry/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RecordEvent(c *gin.Context) {
	var in service.EventInput
	if !bind(c, &in) {
		return
	}
	e, err := h.svc.RecordEvent(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) ListEvents(c *gin.Context) {
	list, err := h.svc.ListEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list})
}

type eventTransitionRequest struct {
	ExpectedCurrentStatus models.EventStatus `json:"expectedCurrentStatus"`
	TargetStatus          models.EventStatus `json:"targetStatus" binding:"required"`
	ResolutionNote        string             `json:"resolutionNote"`
	RootCause             string             `json:"rootCause"`
}

func (h *Handler) TransitionEvent(c *gin.Context) {
	var req eventTransitionRequest
	if !bind(c, &req) {
		return
	}
	e, err := h.svc.TransitionEvent(c.Request.Context(), risk.TransitionEventCommand{
		EntityID:              c.Param("id"),
		ExpectedCurrentStatus: req.ExpectedCurrentStatus,
		TargetStatus:          req.TargetStatus,
		ResolutionNote:        req.ResolutionNote,
		RootCause:             req.RootCause,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

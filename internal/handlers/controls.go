package handlers

import (
	"net/http"

	"ai-risk-registry/internal/models"
	"ai-risk-registry/internal/risk"
	"ai-risk-registry/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateControl(c *gin.Context) {
	var in service.ControlInput
	if !bind(c, &in) {
		return
	}
	ctrl, err := h.svc.CreateControl(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ctrl)
}

func (h *Handler) ListControls(c *gin.Context) {
	list, err := h.svc.ListControls(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"controls": list})
}

type controlTransitionRequest struct {
	ExpectedCurrentStatus models.ControlStatus `json:"expectedCurrentStatus"`
	TargetStatus          models.ControlStatus `json:"targetStatus" binding:"required"`
}

func (h *Handler) TransitionControl(c *gin.Context) {
	var req controlTransitionRequest
	if !bind(c, &req) {
		return
	}
	ctrl, err := h.svc.TransitionControl(c.Request.Context(), risk.TransitionControlCommand{
		EntityID:              c.Param("id"),
		ExpectedCurrentStatus: req.ExpectedCurrentStatus,
		TargetStatus:          req.TargetStatus,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl)
}

type effectivenessRequest struct {
	Effectiveness models.Effectiveness `json:"effectiveness" binding:"required"`
}

func (h *Handler) SetControlEffectiveness(c *gin.Context) {
	var req effectivenessRequest
	if !bind(c, &req) {
		return
	}
	ctrl, err := h.svc.SetControlEffectiveness(c.Request.Context(), c.Param("id"), req.Effectiveness)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl)
}

func (h *Handler) ResetControl(c *gin.Context) {
	ctrl, err := h.svc.ResetControl(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl)
}

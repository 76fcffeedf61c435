package handlers

import (
	"errors"
	"net/http"

	"ai-risk-registry/internal/repository"
	"ai-risk-registry/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateRMS(c *gin.Context) {
	var in service.RMSInput
	if !bind(c, &in) {
		return
	}
	rms, err := h.svc.CreateRMS(c.Request.Context(), c.Param("id"), in)
	if errors.Is(err, repository.ErrRMSExists) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": errorBody{
			Code:    "RMS_EXISTS",
			Message: "This system already has a risk management system. Update it instead.",
		}})
		return
	}
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rms)
}

func (h *Handler) GetRMS(c *gin.Context) {
	view, err := h.svc.GetRMS(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) UpdateRMS(c *gin.Context) {
	var in service.RMSUpdate
	if !bind(c, &in) {
		return
	}
	if in.Version < 1 {
		badRequest(c, errors.New("version is required"))
		return
	}
	rms, err := h.svc.UpdateRMS(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, rms)
}

type reviewRequest struct {
	Version int `json:"version" binding:"required,min=1"`
}

func (h *Handler) RecordReview(c *gin.Context) {
	var req reviewRequest
	if !bind(c, &req) {
		return
	}
	rms, err := h.svc.RecordReview(c.Request.Context(), c.Param("id"), req.Version)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, rms)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Report(c *gin.Context) {
	rep, err := h.svc.GenerateReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

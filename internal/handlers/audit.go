package handlers

import (
	"net/http"
	"strconv"

	"ai-risk-registry/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs serves the journal, newest first, filtered by ?systemId=&entity=&limit=.
func (h *Handler) ListAuditLogs(c *gin.Context) {
	f := repository.AuditFilter{
		SystemID: c.Query("systemId"),
		Entity:   c.Query("entity"),
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		f.Limit = n
	}

	logs, err := h.svc.ListAuditLogs(c.Request.Context(), f)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

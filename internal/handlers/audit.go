package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MANGOpali/attendance-backend/internal/service"
)

type AuditHandler struct {
	Audit *service.AuditService
}

func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{Audit: audit}
}

func (h *AuditHandler) List(c *gin.Context) {
	limit := service.DefaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = max(parsed, 1)
	}

	logs, err := h.Audit.ListRecent(c.Request.Context(), currentActor(c), limit)
	if err != nil {
		respondError(c, err, "DB error")
		return
	}
	c.JSON(http.StatusOK, logs)
}

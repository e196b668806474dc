package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MANGOpali/attendance-backend/internal/service"
)

type DashboardHandler struct {
	Ledger *service.AttendanceService
}

func NewDashboardHandler(ledger *service.AttendanceService) *DashboardHandler {
	return &DashboardHandler{Ledger: ledger}
}

// Get reports present, late and absent counts for ?date_bs=.
func (h *DashboardHandler) Get(c *gin.Context) {
	summary, err := h.Ledger.Summary(c.Request.Context(), c.Query("date_bs"))
	if err != nil {
		respondError(c, err, "DB error")
		return
	}
	c.JSON(http.StatusOK, summary)
}

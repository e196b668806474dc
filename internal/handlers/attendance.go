package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MANGOpali/attendance-backend/internal/logger"
	"github.com/MANGOpali/attendance-backend/internal/report"
	"github.com/MANGOpali/attendance-backend/internal/service"
)

type AttendanceHandler struct {
	Ledger *service.AttendanceService
}

type markAttendanceRequest struct {
	EmployeeID  any    `json:"employee_id"`
	DateBS      string `json:"date_bs"`
	DateAD      string `json:"date_ad"`
	TimeISO     string `json:"time_iso"`
	TimeDisplay string `json:"time_display"`
	Status      string `json:"status"`
}

func NewAttendanceHandler(ledger *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{Ledger: ledger}
}

func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	id, err := h.Ledger.Mark(c.Request.Context(), currentActor(c), service.MarkInput{
		EmployeeID:  parseID(req.EmployeeID),
		DateBS:      req.DateBS,
		DateAD:      req.DateAD,
		TimeISO:     req.TimeISO,
		TimeDisplay: req.TimeDisplay,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, err, "DB error")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *AttendanceHandler) List(c *gin.Context) {
	records, err := h.Ledger.List(c.Request.Context(), c.Query("date_bs"))
	if err != nil {
		respondError(c, err, "DB error")
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *AttendanceHandler) Export(c *gin.Context) {
	format, ok := report.ParseFormat(c.Query("format"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	actor := currentActor(c)
	out, err := h.Ledger.Export(c.Request.Context(), actor, c.Query("date_bs"), format)
	if err != nil {
		respondError(c, err, "Export failed")
		return
	}
	logger.Info("attendance.exported", "actor_id", actor.ID, "format", format, "rows", out.Rows)

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Body)
}

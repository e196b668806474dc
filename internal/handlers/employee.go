package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MANGOpali/attendance-backend/internal/service"
)

type EmployeeHandler struct {
	Directory *service.DirectoryService
}

type createEmployeeRequest struct {
	Name         string `json:"name"`
	LinkedUserID any    `json:"linked_user_id"`
}

type linkEmployeeRequest struct {
	UserEmail string `json:"user_email"`
}

func NewEmployeeHandler(directory *service.DirectoryService) *EmployeeHandler {
	return &EmployeeHandler{Directory: directory}
}

func (h *EmployeeHandler) List(c *gin.Context) {
	employees, err := h.Directory.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "DB error")
		return
	}
	c.JSON(http.StatusOK, employees)
}

func (h *EmployeeHandler) Create(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	var linkedUserID *uint
	if req.LinkedUserID != nil && req.LinkedUserID != "" {
		id := parseID(req.LinkedUserID)
		if id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "linked_user_id does not exist"})
			return
		}
		uid := uint(id)
		linkedUserID = &uid
	}

	id, err := h.Directory.Create(c.Request.Context(), currentActor(c), req.Name, linkedUserID)
	if err != nil {
		respondError(c, err, "DB error")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *EmployeeHandler) Link(c *gin.Context) {
	var req linkEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	result, err := h.Directory.Link(c.Request.Context(), currentActor(c), employeeIDParam(c), req.UserEmail)
	if err != nil {
		respondError(c, err, "DB error")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *EmployeeHandler) Delete(c *gin.Context) {
	if err := h.Directory.Delete(c.Request.Context(), currentActor(c), employeeIDParam(c)); err != nil {
		respondError(c, err, "DB error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// employeeIDParam returns 0 for a malformed id so the service rejects it.
func employeeIDParam(c *gin.Context) int64 {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

package handlers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MANGOpali/attendance-backend/internal/apperr"
	"github.com/MANGOpali/attendance-backend/internal/logger"
	"github.com/MANGOpali/attendance-backend/internal/middleware"
	"github.com/MANGOpali/attendance-backend/internal/service"
)

// respondError writes err as {"error": msg}. Internal failures are logged and
// replaced by fallback.
func respondError(c *gin.Context, err error, fallback string) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.Error("http.internal_error",
			"request_id", middleware.RequestIDFrom(c),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}
	c.JSON(kind.Status(), gin.H{"error": apperr.PublicMessage(err, fallback)})
}

func currentActor(c *gin.Context) service.Actor {
	claims, ok := middleware.Claims(c)
	if !ok {
		return service.Actor{}
	}
	return service.ActorFromClaims(claims)
}

// parseID accepts a JSON number or a numeric string. Anything else yields 0.
func parseID(value any) int64 {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return 0
		}
		return int64(v)
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return id
	}
	return 0
}

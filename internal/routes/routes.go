package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/MANGOpali/attendance-backend/internal/config"
	"github.com/MANGOpali/attendance-backend/internal/email"
	"github.com/MANGOpali/attendance-backend/internal/handlers"
	"github.com/MANGOpali/attendance-backend/internal/middleware"
	"github.com/MANGOpali/attendance-backend/internal/models"
	"github.com/MANGOpali/attendance-backend/internal/service"
)

func Register(router *gin.Engine, db *gorm.DB, cfg config.Config, notifier email.Notifier) {
	router.Use(middleware.RequestID(), middleware.RequestLogger())
	router.Use(corsMiddleware(cfg.AllowedOrigins()))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authService := service.NewAuthService(db, service.AuthOptions{
		Secret:     cfg.JwtSecret,
		TTL:        cfg.JwtTTL(),
		BcryptCost: cfg.BcryptCost,
		Notifier:   notifier,
	})
	ledger := service.NewAttendanceService(db)

	authHandler := handlers.NewAuthHandler(authService)
	employeeHandler := handlers.NewEmployeeHandler(service.NewDirectoryService(db))
	attendanceHandler := handlers.NewAttendanceHandler(ledger)
	dashboardHandler := handlers.NewDashboardHandler(ledger)
	auditHandler := handlers.NewAuditHandler(service.NewAuditService(db))

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
	}

	admin := middleware.RequireAnyRole(models.RoleAdmin)
	supervisors := middleware.RequireAnyRole(models.RoleAdmin, models.RoleManager)

	protected := api.Group("/")
	protected.Use(middleware.AuthRequired(authService))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/reset", admin, authHandler.ResetPassword)

		protected.GET("/employees", employeeHandler.List)
		protected.POST("/employees", admin, employeeHandler.Create)
		protected.POST("/employees/:id/link", admin, employeeHandler.Link)
		protected.DELETE("/employees/:id", admin, employeeHandler.Delete)

		protected.GET("/attendance", attendanceHandler.List)
		protected.POST("/attendance", attendanceHandler.Mark)
		protected.GET("/attendance/export", supervisors, attendanceHandler.Export)
		protected.GET("/dashboard", dashboardHandler.Get)

		protected.GET("/audit", supervisors, auditHandler.List)
	}

	router.NoRoute(spaFallback(cfg.StaticDir))
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Disposition", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	return cors.New(corsConfig)
}

// spaFallback serves files from dir and index.html for unknown client-side
// paths. API paths always get a JSON 404.
func spaFallback(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if dir == "" || strings.HasPrefix(path, "/api/") || path == "/api" || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		file := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	}
}

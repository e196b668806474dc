package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MANGOpali/attendance-backend/internal/config"
	"github.com/MANGOpali/attendance-backend/internal/db"
	"github.com/MANGOpali/attendance-backend/internal/email"
	"github.com/MANGOpali/attendance-backend/internal/logger"
	"github.com/MANGOpali/attendance-backend/internal/routes"
)

func main() {
	configFile := flag.String("config", "", "config file path (default etc/config.yaml when present)")
	migrateOnly := flag.Bool("migrate-only", false, "migrate the schema, seed the admin account and exit")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("config.load_failed", "err", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg)
	if err != nil {
		logger.Error("db.open_failed", "driver", cfg.DbDriver, "err", err)
		os.Exit(1)
	}
	if err := db.SeedAdmin(ctx, database, cfg); err != nil {
		logger.Error("db.seed_failed", "err", err)
		os.Exit(1)
	}
	if *migrateOnly {
		logger.Info("db.migrated", "driver", cfg.DbDriver)
		return
	}

	var notifier email.Notifier = email.NopNotifier{}
	if cfg.MailEnabled() {
		notifier = email.NewSMTPNotifier(email.Config{
			Host:     cfg.SmtpHost,
			Port:     cfg.SmtpPort,
			Username: cfg.SmtpUser,
			Password: cfg.SmtpPass,
			From:     cfg.SmtpFrom,
		})
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	outbox := email.NewOutbox(notifier, 30*time.Second)

	router := gin.New()
	router.Use(gin.Recovery())
	routes.Register(router, database, cfg, outbox)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("server.starting", "addr", cfg.Addr, "env", cfg.AppEnv, "driver", cfg.DbDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server.failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server.shutdown_failed", "err", err)
	}
	if err := outbox.Drain(shutdownCtx); err != nil {
		logger.Warn("email.drain_incomplete", "err", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("server.stopped")
}

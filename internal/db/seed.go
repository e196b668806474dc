package db

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/MANGOpali/attendance-backend/internal/config"
	"github.com/MANGOpali/attendance-backend/internal/logger"
	"github.com/MANGOpali/attendance-backend/internal/models"
	"github.com/MANGOpali/attendance-backend/internal/utils"
)

// SeedAdmin creates the bootstrap admin account when one is configured and no
// user owns that email yet.
func SeedAdmin(ctx context.Context, database *gorm.DB, cfg config.Config) error {
	email := strings.TrimSpace(cfg.AdminBootstrap)
	if email == "" {
		return nil
	}

	var existing models.User
	err := database.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := utils.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:         cfg.AdminName,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := database.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}
	logger.Info("seed.admin_created", "user_id", admin.ID, "email", email)
	return nil
}

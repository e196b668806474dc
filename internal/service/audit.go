package service

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MANGOpali/attendance-backend/internal/apperr"
	"github.com/MANGOpali/attendance-backend/internal/models"
)

const (
	DefaultAuditLimit = 100
	maxAuditLimit     = 500
)

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Append writes one audit entry outside of any caller transaction.
func (s *AuditService) Append(ctx context.Context, action string, actorID *uint, details any) error {
	return appendAudit(s.db.WithContext(ctx), action, actorID, details)
}

// ListRecent returns the newest entries first. A non-positive limit means the default.
func (s *AuditService) ListRecent(ctx context.Context, actor Actor, limit int) ([]models.AuditLog, error) {
	if !actor.Is(models.RoleAdmin, models.RoleManager) {
		return nil, apperr.Forbidden()
	}
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	var logs []models.AuditLog
	err := s.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, apperr.Internal("list audit logs", err)
	}
	return logs, nil
}

func appendAudit(tx *gorm.DB, action string, actorID *uint, details any) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return apperr.Internal("encode audit details", err)
	}
	entry := models.AuditLog{
		Action:  action,
		UserID:  actorID,
		Details: datatypes.JSON(payload),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return apperr.Internal("append audit "+action, err)
	}
	return nil
}

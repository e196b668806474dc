package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/MANGOpali/attendance-backend/internal/dbtest"
	"github.com/MANGOpali/attendance-backend/internal/models"
)

const testSecret = "test-secret"

type fixture struct {
	db       *gorm.DB
	admin    Actor
	manager  Actor
	employee Actor
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return seedFixture(t, dbtest.Open(t))
}

func seedFixture(t *testing.T, database *gorm.DB) fixture {
	t.Helper()
	admin := dbtest.CreateUser(t, database, "Admin", "admin@example.com", "admin123", models.RoleAdmin)
	manager := dbtest.CreateUser(t, database, "Manny", "manager@example.com", "manager1", models.RoleManager)
	employee := dbtest.CreateUser(t, database, "Mango", "mango@example.com", "mango123", models.RoleEmployee)
	return fixture{
		db:       database,
		admin:    Actor{ID: admin.ID, Name: admin.Name, Role: admin.Role},
		manager:  Actor{ID: manager.ID, Name: manager.Name, Role: manager.Role},
		employee: Actor{ID: employee.ID, Name: employee.Name, Role: employee.Role},
	}
}

func auditLogs(t *testing.T, database *gorm.DB, action string) []models.AuditLog {
	t.Helper()
	var logs []models.AuditLog
	require.NoError(t, database.WithContext(context.Background()).
		Where("action = ?", action).Order("id asc").Find(&logs).Error)
	return logs
}

func ptr[T any](v T) *T { return &v }

// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/MANGOpali/attendance-backend/internal/config"
	"github.com/MANGOpali/attendance-backend/internal/db"
	"github.com/MANGOpali/attendance-backend/internal/models"
	"github.com/MANGOpali/attendance-backend/internal/utils"
)

// Open returns a migrated in-memory database private to the test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, "file::memory:?_pragma=foreign_keys(1)")
}

// OpenFile returns a migrated database backed by a file in the test's temp
// dir, for tests that contend on real locks.
func OpenFile(t testing.TB) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attendance.db")
	return open(t, "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
}

func open(t testing.TB, dsn string) *gorm.DB {
	t.Helper()
	database, err := db.Open(config.Config{DbDriver: "sqlite", DbDsn: dsn})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return database
}

// CreateUser inserts a user with a cheap bcrypt digest of password.
func CreateUser(t testing.TB, database *gorm.DB, name, email, password string, role models.Role) models.User {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func CreateEmployee(t testing.TB, database *gorm.DB, name string, linkedUserID *uint) models.Employee {
	t.Helper()
	employee := models.Employee{Name: name, LinkedUserID: linkedUserID}
	if err := database.Create(&employee).Error; err != nil {
		t.Fatalf("create employee: %v", err)
	}
	return employee
}

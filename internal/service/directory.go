package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/MANGOpali/attendance-backend/internal/apperr"
	"github.com/MANGOpali/attendance-backend/internal/logger"
	"github.com/MANGOpali/attendance-backend/internal/models"
)

type DirectoryService struct {
	db *gorm.DB
}

func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{db: db}
}

type LinkResult struct {
	OK           bool `json:"ok"`
	EmployeeID   uint `json:"employee_id"`
	LinkedUserID uint `json:"linked_user_id"`
}

func (s *DirectoryService) List(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if err := s.db.WithContext(ctx).Order("id asc").Find(&employees).Error; err != nil {
		return nil, apperr.Internal("list employees", err)
	}
	return employees, nil
}

func (s *DirectoryService) Get(ctx context.Context, id uint) (models.Employee, error) {
	var employee models.Employee
	err := s.db.WithContext(ctx).First(&employee, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employee, apperr.NotFound("Employee not found")
	}
	if err != nil {
		return employee, apperr.Internal("load employee", err)
	}
	return employee, nil
}

func (s *DirectoryService) Create(ctx context.Context, actor Actor, name string, linkedUserID *uint) (uint, error) {
	if !actor.Is(models.RoleAdmin) {
		return 0, apperr.Forbidden()
	}
	if utf8.RuneCountInString(name) < minNameLength {
		return 0, apperr.Validation("Name required (min 2 chars)")
	}
	if linkedUserID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", *linkedUserID).Count(&count).Error; err != nil {
			return 0, apperr.Internal("check linked user", err)
		}
		if count == 0 {
			return 0, apperr.Validation("linked_user_id does not exist")
		}
	}

	employee := models.Employee{Name: name, LinkedUserID: linkedUserID}
	if err := s.db.WithContext(ctx).Create(&employee).Error; err != nil {
		return 0, apperr.Internal("create employee", err)
	}
	logger.Info("directory.employee_created", "employee_id", employee.ID, "actor_id", actor.ID)
	return employee.ID, nil
}

// Link points an employee at the user with the given email. A user may be
// linked from more than one employee.
func (s *DirectoryService) Link(ctx context.Context, actor Actor, employeeID int64, userEmail string) (LinkResult, error) {
	if !actor.Is(models.RoleAdmin) {
		return LinkResult{}, apperr.Forbidden()
	}
	if employeeID <= 0 {
		return LinkResult{}, apperr.Validation("Invalid employee id")
	}
	userEmail = strings.TrimSpace(userEmail)
	if !IsEmail(userEmail) {
		return LinkResult{}, apperr.Validation("Valid user_email required")
	}

	employee, err := s.Get(ctx, uint(employeeID))
	if err != nil {
		return LinkResult{}, err
	}
	var user models.User
	err = s.db.WithContext(ctx).Where("email = ?", userEmail).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LinkResult{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return LinkResult{}, apperr.Internal("load user", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&employee).Update("linked_user_id", user.ID).Error; err != nil {
			return apperr.Internal("link employee", err)
		}
		return appendAudit(tx, models.ActionLinkEmployee, actor.ref(), map[string]any{
			"employee_id": employee.ID,
			"user_id":     user.ID,
		})
	})
	if err != nil {
		return LinkResult{}, err
	}
	return LinkResult{OK: true, EmployeeID: employee.ID, LinkedUserID: user.ID}, nil
}

// Delete removes an employee; its attendance records go with it.
func (s *DirectoryService) Delete(ctx context.Context, actor Actor, employeeID int64) error {
	if !actor.Is(models.RoleAdmin) {
		return apperr.Forbidden()
	}
	if employeeID <= 0 {
		return apperr.Validation("Invalid employee id")
	}
	employee, err := s.Get(ctx, uint(employeeID))
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&employee).Error; err != nil {
			return apperr.Internal("delete employee", err)
		}
		if err := appendAudit(tx, models.ActionDeleteEmployee, actor.ref(), map[string]any{
			"employee_id": employee.ID,
		}); err != nil {
			return err
		}
		logger.Info("directory.employee_deleted", "employee_id", employee.ID, "actor_id", actor.ID)
		return nil
	})
}

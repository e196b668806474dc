package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/MANGOpali/attendance-backend/internal/apperr"
	"github.com/MANGOpali/attendance-backend/internal/email"
	"github.com/MANGOpali/attendance-backend/internal/logger"
	"github.com/MANGOpali/attendance-backend/internal/models"
	"github.com/MANGOpali/attendance-backend/internal/utils"
)

const (
	minNameLength     = 2
	minPasswordLength = 6
)

type AuthOptions struct {
	Secret     string
	TTL        time.Duration
	BcryptCost int
	// Notifier is called inline after a reset commits; wrap slow transports
	// in an email.Outbox.
	Notifier email.Notifier
}

type AuthService struct {
	db       *gorm.DB
	secret   string
	ttl      time.Duration
	cost     int
	notifier email.Notifier
}

func NewAuthService(db *gorm.DB, opts AuthOptions) *AuthService {
	if opts.TTL <= 0 {
		opts.TTL = 8 * time.Hour
	}
	if opts.Notifier == nil {
		opts.Notifier = email.NopNotifier{}
	}
	return &AuthService{
		db:       db,
		secret:   opts.Secret,
		ttl:      opts.TTL,
		cost:     opts.BcryptCost,
		notifier: opts.Notifier,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type LoginResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// Register creates an account with the requested role. Self-registration may
// pick any role, including Admin.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (uint, error) {
	addr := strings.TrimSpace(in.Email)
	if utf8.RuneCountInString(in.Name) < minNameLength {
		return 0, apperr.Validation("Name required (min 2 chars)")
	}
	if !IsEmail(addr) {
		return 0, apperr.Validation("Valid email required")
	}
	if len(in.Password) < minPasswordLength {
		return 0, apperr.Validation("Password must be at least 6 characters")
	}
	role, ok := models.ParseRole(in.Role)
	if !ok {
		return 0, apperr.Validation("Role must be Admin, Manager, or Employee")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", addr).Count(&count).Error; err != nil {
		return 0, apperr.Internal("check email", err)
	}
	if count > 0 {
		return 0, apperr.Conflict("Email already registered")
	}

	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		return 0, apperr.Internal("hash password", err)
	}
	user := models.User{Name: in.Name, Email: addr, PasswordHash: hash, Role: role}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, apperr.Conflict("Email already registered")
		}
		return 0, apperr.Internal("create user", err)
	}
	logger.Info("auth.registered", "user_id", user.ID, "role", user.Role)
	return user.ID, nil
}

func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (LoginResult, error) {
	emailAddr = strings.TrimSpace(emailAddr)
	if !IsEmail(emailAddr) || password == "" {
		return LoginResult{}, apperr.Validation("Missing credentials")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", emailAddr).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LoginResult{}, apperr.InvalidCredentials()
	}
	if err != nil {
		return LoginResult{}, apperr.Internal("load user", err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return LoginResult{}, apperr.InvalidCredentials()
	}

	token, err := utils.GenerateAccessToken(user, s.secret, s.ttl)
	if err != nil {
		return LoginResult{}, apperr.Internal("sign token", err)
	}
	return LoginResult{Token: token, User: user.Public()}, nil
}

// VerifyBearer checks an Authorization header value and returns its claims.
func (s *AuthService) VerifyBearer(header string) (*utils.AccessClaims, error) {
	if header == "" {
		return nil, apperr.Unauthorized("Missing authorization header")
	}
	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || scheme != "Bearer" || token == "" {
		return nil, apperr.Unauthorized("Invalid authorization format")
	}
	claims, err := utils.ParseAccessToken(token, s.secret)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) Me(ctx context.Context, actor Actor) (models.PublicUser, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, actor.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PublicUser{}, apperr.NotFound("User not found")
	}
	if err != nil {
		return models.PublicUser{}, apperr.Internal("load user", err)
	}
	return user.Public(), nil
}

// ResetPassword lets an admin replace another account's password. Previously
// issued tokens stay valid until they expire.
func (s *AuthService) ResetPassword(ctx context.Context, actor Actor, emailAddr, newPassword string) error {
	if !actor.Is(models.RoleAdmin) {
		return apperr.Forbidden()
	}
	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" || newPassword == "" {
		return apperr.Validation("Email and newPassword required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", emailAddr).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return apperr.Internal("load user", err)
	}

	hash, err := utils.HashPassword(newPassword, s.cost)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password_hash", hash).Error; err != nil {
			return apperr.Internal("update password", err)
		}
		return appendAudit(tx, models.ActionResetPassword, actor.ref(), map[string]any{
			"target_email": user.Email,
		})
	})
	if err != nil {
		return err
	}

	logger.Info("auth.password_reset", "actor_id", actor.ID, "user_id", user.ID)
	// delivery errors are logged only
	if err := s.notifier.PasswordReset(context.WithoutCancel(ctx), user.Email, user.Name); err != nil {
		logger.Warn("auth.reset_notice_failed", "user_id", user.ID, "error", err)
	}
	return nil
}

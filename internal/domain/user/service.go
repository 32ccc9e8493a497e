// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// ErrInvalidCredentials covers both unknown email and wrong password so
// login failures don't leak which one it was
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	emailService    *email.Service
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, emailService *email.Service) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
		emailService:    emailService,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Register creates a new user account
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("passwords do not match")
	}
	if err := s.passwordManager.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	var existing User
	result := s.db.Where("email = LOWER(?)", req.Email).First(&existing)
	if result.Error == nil {
		return nil, fmt.Errorf("user with this email already exists")
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usr := User{
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
		IsAdmin:   false,
	}
	if err := s.db.Create(&usr).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueToken(&usr)
}

// Login authenticates a user. Successful admin logins trigger a
// best-effort alert email to the configured admin address.
func (s *Service) Login(ctx context.Context, req *LoginRequest, clientIP, userAgent string) (*AuthResponse, error) {
	var usr User
	if err := s.db.Where("email = LOWER(?)", req.Email).First(&usr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !usr.IsActive {
		return nil, fmt.Errorf("account is deactivated")
	}
	if err := s.passwordManager.VerifyPassword(usr.Password, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	usr.LastLoginAt = &now
	s.db.Model(&usr).Update("last_login_at", now)

	if usr.IsAdmin && s.emailService.Enabled() {
		if err := s.emailService.SendAdminLoginAlert(ctx, usr.Email, clientIP, userAgent); err != nil {
			logrus.WithError(err).Warn("Failed to send admin login alert")
		}
	}

	return s.issueToken(&usr)
}

// GetProfile retrieves a user by ID
func (s *Service) GetProfile(userID uint) (*User, error) {
	var usr User
	if err := s.db.First(&usr, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	usr.Password = ""
	return &usr, nil
}

func (s *Service) issueToken(usr *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(usr.ID, usr.Email, usr.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	usr.Password = ""
	return &AuthResponse{
		User:        usr,
		AccessToken: accessToken,
		ExpiresIn:   int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

// Package users handles accounts and bearer token issuance.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"orderflow/internal/apperror"
	"orderflow/internal/database/models"
	"orderflow/internal/utils"
)

const MsgInvalidCredentials = "Invalid email or password"

type RegisterInput struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6"`
	Name     string  `json:"name" binding:"required"`
	Phone    *string `json:"phone,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type Service struct {
	db     *gorm.DB
	jwt    *utils.JWTManager
	tokens *TokenDenylist
	cost   int
	log    zerolog.Logger
}

// NewService builds the account service. tokens may be nil, in which case
// logout cannot revoke anything and tokens live until they expire.
func NewService(db *gorm.DB, jwt *utils.JWTManager, tokens *TokenDenylist, log zerolog.Logger) *Service {
	return &Service{
		db:     db,
		jwt:    jwt,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
		log:    log.With().Str("component", "users").Logger(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing > 0 {
		return nil, apperror.Domain("Email already registered")
	}

	user, err := s.createUser(ctx, email, in.Password, strings.TrimSpace(in.Name), in.Phone, models.RoleCustomer)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user registered")
	return s.issue(user)
}

func (s *Service) Authenticate(ctx context.Context, in LoginInput) (*AuthResult, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(in.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized(MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, apperror.Unauthorized(MsgInvalidCredentials)
	}

	return s.issue(&user)
}

func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SeedAdmin creates the administrator account unless one with that email
// already exists. It reports whether a user was created.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return false, fmt.Errorf("failed to check admin user: %w", err)
	}
	if existing > 0 {
		return false, nil
	}

	user, err := s.createUser(ctx, email, password, "Admin User", nil, models.RoleAdmin)
	if err != nil {
		return false, err
	}

	s.log.Info().Int64("user_id", user.ID).Str("email", email).Msg("admin user created")
	return true, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *utils.Claims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", claims.UserId).Msg("user logged out")
	return nil
}

func (s *Service) createUser(ctx context.Context, email, password, name string, phone *string, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := models.User{
		Email:    email,
		Password: string(hash),
		Name:     name,
		Phone:    phone,
		Role:     role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return &user, nil
}

func (s *Service) issue(user *models.User) (*AuthResult, error) {
	token, exp, err := s.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

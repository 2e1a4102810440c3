package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"inmobiliaria/server/internal/database"
	"inmobiliaria/server/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AdminStore is the persistence the service needs
type AdminStore interface {
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	CreateAdmin(ctx context.Context, email, passwordHash string) (*models.Admin, error)
}

type Service struct {
	store  AdminStore
	tokens *Tokens
	logger *logrus.Logger
}

func NewService(store AdminStore, tokens *Tokens, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{store: store, tokens: tokens, logger: logger}
}

func (s *Service) Tokens() *Tokens {
	return s.tokens
}

// Login verifies the credentials and issues a session token
func (s *Service) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	admin, err := s.store.GetAdminByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPasswordHash(password, admin.PasswordHash) {
		s.logger.WithField("email", admin.Email).Warn("Failed admin login")
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(admin)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Admin:     admin,
	}, nil
}

// SeedAdmin creates the admin account unless it already exists.
// It reports whether an account was created.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, nil
	}
	if len(password) < 6 || len(password) > 72 {
		return false, fmt.Errorf("admin password must be between 6 and 72 characters")
	}

	_, err := s.store.GetAdminByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return false, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin, err := s.store.CreateAdmin(ctx, email, hash)
	if err != nil {
		return false, err
	}

	s.logger.WithField("email", admin.Email).Info("Seeded admin account")
	return true, nil
}

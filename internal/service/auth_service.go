// Package service contains the business logic between HTTP handlers and
// the data layer.
package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Nayuta9382/taskdeck/internal/models"
	apperrors "github.com/Nayuta9382/taskdeck/internal/pkg/errors"
	"github.com/Nayuta9382/taskdeck/internal/repository"
)

// bcryptCost matches the original credential store so existing hashes
// remain verifiable.
const bcryptCost = 10

// AuthService handles local credentials, sessions, and profile updates.
type AuthService interface {
	Signup(ctx context.Context, id, name, password string) (*models.User, error)
	Login(ctx context.Context, id, password string) (*models.User, string, error)
	Logout(ctx context.Context, sessionID string) error
	ValidateSession(ctx context.Context, sessionID string) (string, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID, name, imgPath string) error
}

type authService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	sessionTTL time.Duration,
	logger *slog.Logger,
) AuthService {
	return &authService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Signup registers a new local account. The duplicate check runs before
// hashing so a taken ID fails fast.
func (s *authService) Signup(ctx context.Context, id, name, password string) (*models.User, error) {
	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrConflict.WithMessage("This ID is already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:       id,
		Name:     name,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("user_id", id))
	return user, nil
}

// Login verifies credentials and opens a fresh server-side session.
// Unknown IDs, wrong passwords, and OAuth-only accounts all fail with the
// same error so the response never reveals which part was wrong.
func (s *authService) Login(ctx context.Context, id, password string) (*models.User, string, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if user == nil || user.IsOAuthOnly() {
		return nil, "", apperrors.ErrAuthFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperrors.ErrAuthFailed
	}

	sessionID, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return user, sessionID, nil
}

// Logout discards the server-side session. A missing session is not an
// error; logout is idempotent.
func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// ValidateSession resolves a session ID to its user ID, or returns
// ErrUnauthorized when the session is unknown or expired.
func (s *authService) ValidateSession(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", apperrors.ErrUnauthorized
	}
	userID, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// GetUser loads a user, returning ErrNotFound when the row is gone.
func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewNotFoundError("user")
	}
	return user, nil
}

// UpdateProfile overwrites the display name and avatar path.
func (s *authService) UpdateProfile(ctx context.Context, userID, name, imgPath string) error {
	return s.users.Update(ctx, userID, name, imgPath)
}

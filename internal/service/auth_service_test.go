package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Nayuta9382/taskdeck/internal/models"
	apperrors "github.com/Nayuta9382/taskdeck/internal/pkg/errors"
)

// Mock repositories for testing

type mockUserRepo struct {
	users     map[string]*models.User
	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if user.ImgPath == "" {
		user.ImgPath = "/uploads/default-img.png"
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) Update(ctx context.Context, id, name, imgPath string) error {
	if user, ok := m.users[id]; ok {
		user.Name = name
		user.ImgPath = imgPath
	}
	return nil
}

type mockSessionRepo struct {
	sessions map[string]string
	next     int
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]string)}
}

func (m *mockSessionRepo) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	m.next++
	id := fmt.Sprintf("session-%d", m.next)
	m.sessions[id] = userID
	return id, nil
}

func (m *mockSessionRepo) Get(ctx context.Context, sessionID string) (string, error) {
	return m.sessions[sessionID], nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, sessionID string) error {
	delete(m.sessions, sessionID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuthService() (AuthService, *mockUserRepo, *mockSessionRepo) {
	users := newMockUserRepo()
	sessions := newMockSessionRepo()
	return NewAuthService(users, sessions, 2*time.Hour, testLogger()), users, sessions
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		svc, users, _ := newTestAuthService()

		user, err := svc.Signup(ctx, "alice", "Alice", "password123")
		require.NoError(t, err)

		assert.Equal(t, "alice", user.ID)
		assert.NotEqual(t, "password123", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
		assert.Equal(t, "/uploads/default-img.png", users.users["alice"].ImgPath)
	})

	t.Run("duplicate id is a conflict", func(t *testing.T) {
		svc, _, _ := newTestAuthService()

		_, err := svc.Signup(ctx, "alice", "Alice", "password123")
		require.NoError(t, err)

		_, err = svc.Signup(ctx, "alice", "Someone Else", "otherpassword")
		assert.True(t, apperrors.IsCode(err, "conflict"))
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials open a session", func(t *testing.T) {
		svc, _, sessions := newTestAuthService()
		_, err := svc.Signup(ctx, "alice", "Alice", "password123")
		require.NoError(t, err)

		user, sessionID, err := svc.Login(ctx, "alice", "password123")
		require.NoError(t, err)

		assert.Equal(t, "alice", user.ID)
		assert.Equal(t, "alice", sessions.sessions[sessionID])
	})

	t.Run("unknown id and wrong password fail identically", func(t *testing.T) {
		svc, _, _ := newTestAuthService()
		_, err := svc.Signup(ctx, "alice", "Alice", "password123")
		require.NoError(t, err)

		_, _, errUnknown := svc.Login(ctx, "nobody", "password123")
		_, _, errWrong := svc.Login(ctx, "alice", "wrongpassword")

		assert.Equal(t, errUnknown, errWrong)
		assert.True(t, apperrors.IsCode(errUnknown, "auth_failed"))
	})

	t.Run("oauth-only account cannot log in locally", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		require.NoError(t, users.Create(ctx, &models.User{ID: "github_42", Name: "Octo"}))

		_, _, err := svc.Login(ctx, "github_42", "")
		assert.True(t, apperrors.IsCode(err, "auth_failed"))
	})

	t.Run("each login gets a fresh session", func(t *testing.T) {
		svc, _, _ := newTestAuthService()
		_, err := svc.Signup(ctx, "alice", "Alice", "password123")
		require.NoError(t, err)

		_, first, err := svc.Login(ctx, "alice", "password123")
		require.NoError(t, err)
		_, second, err := svc.Login(ctx, "alice", "password123")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}

func TestValidateSession(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions := newTestAuthService()
	sessions.sessions["live"] = "alice"

	t.Run("known session resolves", func(t *testing.T) {
		userID, err := svc.ValidateSession(ctx, "live")
		require.NoError(t, err)
		assert.Equal(t, "alice", userID)
	})

	t.Run("unknown session is unauthorized", func(t *testing.T) {
		_, err := svc.ValidateSession(ctx, "expired")
		assert.True(t, apperrors.IsCode(err, "unauthorized"))
	})

	t.Run("empty session id is unauthorized", func(t *testing.T) {
		_, err := svc.ValidateSession(ctx, "")
		assert.True(t, apperrors.IsCode(err, "unauthorized"))
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions := newTestAuthService()
	sessions.sessions["live"] = "alice"

	require.NoError(t, svc.Logout(ctx, "live"))
	assert.NotContains(t, sessions.sessions, "live")

	// Logging out twice is fine.
	assert.NoError(t, svc.Logout(ctx, "live"))
	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestAuthService()
	require.NoError(t, users.Create(ctx, &models.User{ID: "alice", Name: "Alice"}))

	user, err := svc.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)

	_, err = svc.GetUser(ctx, "ghost")
	assert.True(t, apperrors.IsCode(err, "not_found"))
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/Nayuta9382/taskdeck/internal/models"
	apperrors "github.com/Nayuta9382/taskdeck/internal/pkg/errors"
	"github.com/Nayuta9382/taskdeck/internal/repository"
)

const githubUserURL = "https://api.github.com/user"

// githubUser is the subset of the GitHub user payload we care about.
type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// OAuthService handles the GitHub authorization-code flow.
type OAuthService interface {
	AuthURL(state string) string
	HandleCallback(ctx context.Context, code string) (*models.User, string, error)
}

type oauthService struct {
	config     *oauth2.Config
	users      repository.UserRepository
	sessions   repository.SessionRepository
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewOAuthService creates the GitHub OAuth service.
func NewOAuthService(
	clientID, clientSecret, callbackURL string,
	users repository.UserRepository,
	sessions repository.SessionRepository,
	sessionTTL time.Duration,
	logger *slog.Logger,
) OAuthService {
	return &oauthService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user"},
			Endpoint:     github.Endpoint,
		},
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// AuthURL returns the GitHub authorization page URL bound to the given
// anti-forgery state.
func (s *oauthService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// HandleCallback exchanges the authorization code, loads the GitHub
// profile, upserts the linked local account, and opens a session.
func (s *oauthService) HandleCallback(ctx context.Context, code string) (*models.User, string, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, "", apperrors.ErrAuthFailed.WithMessage("GitHub authorization failed")
	}

	gh, err := s.fetchUser(ctx, token)
	if err != nil {
		return nil, "", err
	}

	user, err := s.findOrCreate(ctx, gh)
	if err != nil {
		return nil, "", err
	}

	sessionID, err := s.sessions.Create(ctx, user.ID, s.sessionTTL)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in via github", slog.String("user_id", user.ID))
	return user, sessionID, nil
}

func (s *oauthService) fetchUser(ctx context.Context, token *oauth2.Token) (*githubUser, error) {
	client := s.config.Client(ctx, token)
	resp, err := client.Get(githubUserURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("github user endpoint returned %d: %s", resp.StatusCode, body)
	}

	var gh githubUser
	if err := json.NewDecoder(resp.Body).Decode(&gh); err != nil {
		return nil, err
	}
	return &gh, nil
}

// findOrCreate links the GitHub identity to a local account keyed by the
// numeric GitHub ID. Name and avatar are refreshed on every login so the
// local copy tracks the upstream profile.
func (s *oauthService) findOrCreate(ctx context.Context, gh *githubUser) (*models.User, error) {
	id := fmt.Sprintf("github_%d", gh.ID)
	name := gh.Name
	if name == "" {
		name = gh.Login
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{
			ID:      id,
			Name:    name,
			ImgPath: gh.AvatarURL,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("github user registered", slog.String("user_id", id))
		return user, nil
	}

	if user.Name != name || user.ImgPath != gh.AvatarURL {
		if err := s.users.Update(ctx, id, name, gh.AvatarURL); err != nil {
			return nil, err
		}
		user.Name = name
		user.ImgPath = gh.AvatarURL
	}
	return user, nil
}

// Package web provides the HTTP handlers for the server-rendered pages.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/Nayuta9382/taskdeck/internal/models"
	apperrors "github.com/Nayuta9382/taskdeck/internal/pkg/errors"
	"github.com/Nayuta9382/taskdeck/internal/service"
	"github.com/Nayuta9382/taskdeck/internal/session"
	"github.com/Nayuta9382/taskdeck/internal/upload"
	"github.com/Nayuta9382/taskdeck/internal/view"
)

// Context keys for request context values.
type contextKey string

const (
	// ContextKeyUser is the context key for the authenticated user.
	ContextKeyUser contextKey = "user"
	// ContextKeyTask is the context key for the ownership-checked task.
	ContextKeyTask contextKey = "task"
)

// Handler handles HTTP requests for the web pages.
type Handler struct {
	auth     service.AuthService
	oauth    service.OAuthService
	tasks    service.TaskService
	sessions *session.Manager
	uploads  *upload.Store
	logger   *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(
	auth service.AuthService,
	oauth service.OAuthService,
	tasks service.TaskService,
	sessions *session.Manager,
	uploads *upload.Store,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		auth:     auth,
		oauth:    oauth,
		tasks:    tasks,
		sessions: sessions,
		uploads:  uploads,
		logger:   logger,
	}
}

// Routes returns the chi router with all web routes configured.
func (h *Handler) Routes(loginLimiter func(next http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
	})

	// Public routes (no auth required)
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", h.LoginPage)
		r.With(loginLimiter).Post("/login", h.Login)
		r.Get("/login-error", h.LoginErrorPage)
		r.Get("/logout", h.Logout)
		r.Get("/signup", h.SignupPage)
		r.Post("/signup", h.Signup)
		r.Get("/github", h.OAuthStart)
		r.Get("/github/callback", h.OAuthCallback)
		r.Get("/failure", h.AuthFailure)

		// Profile pages require a session.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Get("/edit", h.ProfileEdit)
			r.Post("/edit", h.ProfileUpdate)
		})
	})

	// Protected routes (auth required)
	r.Route("/task", func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/", h.TaskList)
		r.Get("/new", h.TaskNew)
		r.Post("/new", h.TaskCreate)
		r.Post("/delete", h.TaskDelete)
		r.Post("/restore", h.TaskRestore)

		r.Group(func(r chi.Router) {
			r.Use(h.requireTaskOwner)
			r.Get("/detail/{id}", h.TaskDetail)
			r.Get("/edit/{id}", h.TaskEdit)
			r.Post("/edit/{id}", h.TaskUpdate)
		})
	})

	return r
}

// RequireAuth ensures the request carries a live session and loads the
// user into the request context. A stale or invalid session is cleared
// before redirecting to the login page.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, sessionID, ok := h.sessions.Auth(r)
		if !ok {
			http.Redirect(w, r, "/auth/login", http.StatusFound)
			return
		}

		sessionUserID, err := h.auth.ValidateSession(r.Context(), sessionID)
		if err != nil || sessionUserID != userID {
			h.sessions.Destroy(w, r)
			http.Redirect(w, r, "/auth/login", http.StatusFound)
			return
		}

		user, err := h.auth.GetUser(r.Context(), userID)
		if err != nil {
			// Session exists but the user row is gone, clear the session.
			h.sessions.Destroy(w, r)
			http.Redirect(w, r, "/auth/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireTaskOwner resolves the {id} route parameter to a task the
// current user owns and stores it in the context. A malformed ID behaves
// like a missing task.
func (h *Handler) requireTaskOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := userFrom(r.Context())

		taskID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			h.renderError(w, r, apperrors.NewNotFoundError("task"))
			return
		}

		task, err := h.tasks.GetOwned(r.Context(), user.ID, taskID)
		if err != nil {
			h.renderError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyTask, task)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// verifyCSRF checks the submitted token against the session-bound one.
func (h *Handler) verifyCSRF(w http.ResponseWriter, r *http.Request) bool {
	if h.sessions.VerifyCSRFToken(r, r.FormValue("_csrf")) {
		return true
	}
	h.renderError(w, r, apperrors.ErrForbidden.WithMessage("Invalid or missing form token"))
	return false
}

// renderError maps any error to the shared error page. Internal details
// are logged, never shown.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.AsError(err)
	if appErr.StatusCode >= 500 {
		h.logger.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
	}
	templ.Handler(view.ErrorPage(appErr.StatusCode, appErr.Message),
		templ.WithStatus(appErr.StatusCode)).ServeHTTP(w, r)
}

// RenderRateLimited is the rate limiter callback rendering the 429 page.
func (h *Handler) RenderRateLimited(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, apperrors.ErrRateLimited)
}

func userFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(ContextKeyUser).(*models.User)
	return user
}

func taskFrom(ctx context.Context) *models.Task {
	task, _ := ctx.Value(ContextKeyTask).(*models.Task)
	return task
}

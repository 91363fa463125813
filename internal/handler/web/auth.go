package web

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/Nayuta9382/taskdeck/internal/middleware"
	apperrors "github.com/Nayuta9382/taskdeck/internal/pkg/errors"
	"github.com/Nayuta9382/taskdeck/internal/session"
	"github.com/Nayuta9382/taskdeck/internal/validation"
	"github.com/Nayuta9382/taskdeck/internal/view"
)

// profileFormMemory bounds multipart parsing. Larger than the upload
// ceiling so an oversized file is rejected with a friendly message
// instead of a parse failure.
const profileFormMemory = 4 << 20

// LoginPage renders the login page. Signed-in visitors go straight to
// their tasks.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.redirectIfAuthed(w, r) {
		return
	}

	formErrors, oldInput := h.sessions.PopFormState(w, r)
	templ.Handler(view.Login(view.LoginData{
		FormErrors: formErrors,
		OldInput:   oldInput,
	})).ServeHTTP(w, r)
}

// LoginErrorPage renders the login page with the one-shot failure
// message. Arriving without a pending message redirects to the plain
// login page so a reload never re-shows a stale error.
func (h *Handler) LoginErrorPage(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.sessions.PopFlash(w, r, session.FlashError)
	if !ok {
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}

	formErrors, oldInput := h.sessions.PopFormState(w, r)
	templ.Handler(view.Login(view.LoginData{
		Error:      msg,
		FormErrors: formErrors,
		OldInput:   oldInput,
	})).ServeHTTP(w, r)
}

// Login handles the login form submission. On success the session is
// regenerated, the cookie written and flushed, all before the redirect.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, apperrors.ErrBadRequest)
		return
	}

	form := validation.LoginForm{
		ID:       r.FormValue("id"),
		Password: r.FormValue("password"),
	}
	if errs := validation.Validate(form); len(errs) > 0 {
		h.sessions.SetFormState(w, r, errs, map[string]string{"id": form.ID})
		http.Redirect(w, r, "/auth/login", http.StatusFound)
		return
	}

	user, sessionID, err := h.auth.Login(r.Context(), form.ID, form.Password)
	if err != nil {
		if apperrors.IsCode(err, "auth_failed") {
			h.sessions.AddFlash(w, r, session.FlashError, apperrors.ErrAuthFailed.Message)
			h.sessions.SetFormState(w, r, nil, map[string]string{"id": form.ID})
			http.Redirect(w, r, "/auth/login-error", http.StatusFound)
			return
		}
		h.renderError(w, r, err)
		return
	}

	// Discard any session left from a previous login before binding the
	// cookie to the new one.
	if _, oldSessionID, ok := h.sessions.Auth(r); ok {
		_ = h.auth.Logout(r.Context(), oldSessionID)
	}
	if err := h.sessions.SetAuth(w, r, user.ID, sessionID); err != nil {
		h.renderError(w, r, apperrors.ErrInternal)
		return
	}

	middleware.IncrementLogins("local")
	http.Redirect(w, r, "/task", http.StatusFound)
}

// Logout destroys the server-side session and clears the cookie. The
// cookie is cleared even when the store delete fails.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, sessionID, ok := h.sessions.Auth(r); ok {
		_ = h.auth.Logout(r.Context(), sessionID)
	}
	h.sessions.Destroy(w, r)
	http.Redirect(w, r, "/auth/login", http.StatusFound)
}

// SignupPage renders the registration page with any one-shot state from
// a failed submission.
func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	if h.redirectIfAuthed(w, r) {
		return
	}

	idError, _ := h.sessions.PopFlash(w, r, session.FlashIDError)
	passwordError, _ := h.sessions.PopFlash(w, r, session.FlashPasswordError)
	formErrors, oldInput := h.sessions.PopFormState(w, r)

	templ.Handler(view.Signup(view.SignupData{
		IDError:       idError,
		PasswordError: passwordError,
		FormErrors:    formErrors,
		OldInput:      oldInput,
	})).ServeHTTP(w, r)
}

// Signup handles the registration form submission. Failures redirect
// back with one-shot state; success lands on the login page.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, apperrors.ErrBadRequest)
		return
	}

	form := validation.SignupForm{
		ID:              r.FormValue("id"),
		Name:            r.FormValue("name"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	}
	old := map[string]string{"id": form.ID, "name": form.Name}

	if errs := validation.Validate(form); len(errs) > 0 {
		h.sessions.SetFormState(w, r, errs, old)
		http.Redirect(w, r, "/auth/signup", http.StatusFound)
		return
	}
	if form.Password != form.ConfirmPassword {
		h.sessions.AddFlash(w, r, session.FlashPasswordError, "Passwords do not match")
		h.sessions.SetFormState(w, r, nil, old)
		http.Redirect(w, r, "/auth/signup", http.StatusFound)
		return
	}

	_, err := h.auth.Signup(r.Context(), form.ID, form.Name, form.Password)
	if err != nil {
		if apperrors.IsCode(err, "conflict") {
			h.sessions.AddFlash(w, r, session.FlashIDError, apperrors.AsError(err).Message)
			h.sessions.SetFormState(w, r, nil, old)
			http.Redirect(w, r, "/auth/signup", http.StatusFound)
			return
		}
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/auth/login", http.StatusFound)
}

// ProfileEdit renders the profile page with any one-shot upload error.
func (h *Handler) ProfileEdit(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	uploadError, _ := h.sessions.PopFlash(w, r, session.FlashUploadError)
	formErrors, oldInput := h.sessions.PopFormState(w, r)
	token, err := h.sessions.EnsureCSRFToken(w, r)
	if err != nil {
		h.renderError(w, r, apperrors.ErrInternal)
		return
	}

	templ.Handler(view.ProfileEdit(view.ProfileData{
		User:        user,
		UploadError: uploadError,
		FormErrors:  formErrors,
		OldInput:    oldInput,
		CSRFToken:   token,
	})).ServeHTTP(w, r)
}

// ProfileUpdate handles the multipart profile form: optional new avatar
// plus display name. Upload rejections redirect back with a one-shot
// message; the old local avatar is removed after a successful swap.
func (h *Handler) ProfileUpdate(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := r.ParseMultipartForm(profileFormMemory); err != nil {
		h.sessions.AddFlash(w, r, session.FlashUploadError, apperrors.ErrUploadTooLarge.Message)
		http.Redirect(w, r, "/auth/edit", http.StatusFound)
		return
	}
	if !h.verifyCSRF(w, r) {
		return
	}

	form := validation.ProfileForm{Name: r.FormValue("name")}
	if errs := validation.Validate(form); len(errs) > 0 {
		h.sessions.SetFormState(w, r, errs, map[string]string{"name": form.Name})
		http.Redirect(w, r, "/auth/edit", http.StatusFound)
		return
	}

	imgPath := user.ImgPath
	if file, fh, err := r.FormFile("img"); err == nil {
		file.Close()
		newPath, err := h.uploads.Save(fh)
		if err != nil {
			appErr := apperrors.AsError(err)
			if appErr.StatusCode >= 500 {
				h.renderError(w, r, err)
				return
			}
			h.sessions.AddFlash(w, r, session.FlashUploadError, appErr.Message)
			h.sessions.SetFormState(w, r, nil, map[string]string{"name": form.Name})
			http.Redirect(w, r, "/auth/edit", http.StatusFound)
			return
		}
		imgPath = newPath
	}

	if err := h.auth.UpdateProfile(r.Context(), user.ID, form.Name, imgPath); err != nil {
		if imgPath != user.ImgPath {
			h.uploads.Remove(imgPath)
		}
		h.renderError(w, r, err)
		return
	}
	if imgPath != user.ImgPath {
		h.uploads.Remove(user.ImgPath)
	}

	http.Redirect(w, r, "/task", http.StatusFound)
}

// OAuthStart begins the GitHub authorization flow with a fresh
// anti-forgery state.
func (h *Handler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	state, err := session.NewState()
	if err != nil {
		h.renderError(w, r, apperrors.ErrInternal)
		return
	}
	if err := h.sessions.SetOAuthState(w, r, state); err != nil {
		h.renderError(w, r, apperrors.ErrInternal)
		return
	}

	http.Redirect(w, r, h.oauth.AuthURL(state), http.StatusTemporaryRedirect)
}

// OAuthCallback completes the GitHub flow: state check, code exchange,
// account upsert, session binding.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if errMsg := r.URL.Query().Get("error"); errMsg != "" || code == "" {
		http.Redirect(w, r, "/auth/failure", http.StatusFound)
		return
	}

	savedState := h.sessions.PopOAuthState(w, r)
	if savedState == "" || savedState != state {
		http.Redirect(w, r, "/auth/failure", http.StatusFound)
		return
	}

	user, sessionID, err := h.oauth.HandleCallback(r.Context(), code)
	if err != nil {
		h.logger.Warn("github callback failed", "error", err.Error())
		http.Redirect(w, r, "/auth/failure", http.StatusFound)
		return
	}

	if _, oldSessionID, ok := h.sessions.Auth(r); ok {
		_ = h.auth.Logout(r.Context(), oldSessionID)
	}
	if err := h.sessions.SetAuth(w, r, user.ID, sessionID); err != nil {
		h.renderError(w, r, apperrors.ErrInternal)
		return
	}

	middleware.IncrementLogins("github")
	http.Redirect(w, r, "/task", http.StatusFound)
}

// AuthFailure renders the OAuth failure page.
func (h *Handler) AuthFailure(w http.ResponseWriter, r *http.Request) {
	templ.Handler(view.AuthFailure()).ServeHTTP(w, r)
}

// redirectIfAuthed sends visitors with a live session to the task list.
func (h *Handler) redirectIfAuthed(w http.ResponseWriter, r *http.Request) bool {
	userID, sessionID, ok := h.sessions.Auth(r)
	if !ok {
		return false
	}
	sessionUserID, err := h.auth.ValidateSession(r.Context(), sessionID)
	if err != nil || sessionUserID != userID {
		return false
	}
	http.Redirect(w, r, "/task", http.StatusFound)
	return true
}

// Package session manages the client cookie session: the authenticated
// identity, one-shot flash messages, one-shot form validation state, and the
// CSRF token. Server-side session records live in the session repository;
// this package only handles what travels in the cookie.
package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

// Cookie session names.
const (
	CookieName     = "taskdeck_session"
	OAuthStateName = "taskdeck_oauth_state"
)

// Flash message keys. Each flash is read and cleared in a single render.
const (
	FlashError         = "error"
	FlashIDError       = "idError"
	FlashPasswordError = "passwordError"
	FlashUploadError   = "uploadError"
)

const (
	valueUserID    = "user_id"
	valueSessionID = "session_id"
	valueCSRFToken = "csrf_token"
	valueFormErrs  = "form_errors"
	valueOldInput  = "old_input"
	valueState     = "state"
)

func init() {
	gob.Register(map[string][]string{})
	gob.Register(map[string]string{})
}

// Manager wraps the cookie store with the session contract used by the
// handlers.
type Manager struct {
	store  sessions.Store
	maxAge int
}

// NewManager creates a cookie-backed session manager. The secure flag on the
// cookie is decided per request from the TLS state.
func NewManager(secret string, maxAge int) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, maxAge: maxAge}
}

func (m *Manager) get(r *http.Request) *sessions.Session {
	// A decode error yields a fresh session, which is the right fallback for
	// a tampered or stale cookie.
	session, _ := m.store.Get(r, CookieName)
	return session
}

func (m *Manager) save(w http.ResponseWriter, r *http.Request, s *sessions.Session) error {
	s.Options.Secure = r.TLS != nil
	return s.Save(r, w)
}

// SetAuth writes the authenticated identity into the cookie and flushes it.
// The flush must succeed before the caller issues its redirect.
func (m *Manager) SetAuth(w http.ResponseWriter, r *http.Request, userID, sessionID string) error {
	session := m.get(r)
	session.Values[valueUserID] = userID
	session.Values[valueSessionID] = sessionID
	session.Options.MaxAge = m.maxAge
	return m.save(w, r, session)
}

// Auth returns the authenticated identity from the cookie.
func (m *Manager) Auth(r *http.Request) (userID, sessionID string, ok bool) {
	session := m.get(r)
	userID, _ = session.Values[valueUserID].(string)
	sessionID, _ = session.Values[valueSessionID].(string)
	return userID, sessionID, userID != ""
}

// Destroy expires the cookie session. Safe to call with no active session.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	session := m.get(r)
	session.Options.MaxAge = -1
	_ = m.save(w, r, session)
}

// AddFlash stores a one-shot message under the given key.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, key, message string) error {
	session := m.get(r)
	session.AddFlash(message, key)
	return m.save(w, r, session)
}

// PopFlash reads and clears the one-shot message under the given key. A
// second read returns ok=false.
func (m *Manager) PopFlash(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	session := m.get(r)
	flashes := session.Flashes(key)
	if err := m.save(w, r, session); err != nil {
		return "", false
	}
	if len(flashes) == 0 {
		return "", false
	}
	message, ok := flashes[0].(string)
	return message, ok
}

// SetFormState stashes validation errors and the submitted input so the
// originating form can repopulate after the redirect.
func (m *Manager) SetFormState(w http.ResponseWriter, r *http.Request, errs map[string][]string, old map[string]string) error {
	session := m.get(r)
	session.Values[valueFormErrs] = errs
	session.Values[valueOldInput] = old
	return m.save(w, r, session)
}

// PopFormState reads and clears the one-shot validation state.
func (m *Manager) PopFormState(w http.ResponseWriter, r *http.Request) (map[string][]string, map[string]string) {
	session := m.get(r)
	errs, _ := session.Values[valueFormErrs].(map[string][]string)
	old, _ := session.Values[valueOldInput].(map[string]string)
	if errs == nil && old == nil {
		return map[string][]string{}, map[string]string{}
	}
	delete(session.Values, valueFormErrs)
	delete(session.Values, valueOldInput)
	_ = m.save(w, r, session)
	if errs == nil {
		errs = map[string][]string{}
	}
	if old == nil {
		old = map[string]string{}
	}
	return errs, old
}

// EnsureCSRFToken returns the session's CSRF token, minting one on first use.
// The token is embedded in each form render and verified on the POST.
func (m *Manager) EnsureCSRFToken(w http.ResponseWriter, r *http.Request) (string, error) {
	session := m.get(r)
	if token, ok := session.Values[valueCSRFToken].(string); ok && token != "" {
		return token, nil
	}
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	session.Values[valueCSRFToken] = token
	if err := m.save(w, r, session); err != nil {
		return "", err
	}
	return token, nil
}

// VerifyCSRFToken checks the submitted token against the session token in
// constant time.
func (m *Manager) VerifyCSRFToken(r *http.Request, submitted string) bool {
	session := m.get(r)
	token, ok := session.Values[valueCSRFToken].(string)
	if !ok || token == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) == 1
}

// SetOAuthState stores the OAuth state parameter in a short-lived cookie.
func (m *Manager) SetOAuthState(w http.ResponseWriter, r *http.Request, state string) error {
	session, _ := m.store.Get(r, OAuthStateName)
	session.Values[valueState] = state
	session.Options.MaxAge = 300 // 5 minutes
	return m.save(w, r, session)
}

// PopOAuthState reads and clears the OAuth state cookie.
func (m *Manager) PopOAuthState(w http.ResponseWriter, r *http.Request) string {
	session, _ := m.store.Get(r, OAuthStateName)
	state, _ := session.Values[valueState].(string)
	session.Options.MaxAge = -1
	_ = m.save(w, r, session)
	return state
}

// NewState generates a cryptographically secure random state value.
func NewState() (string, error) {
	return randomToken()
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

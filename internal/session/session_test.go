package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-at-least-32-characters"

func newTestManager() *Manager {
	return NewManager(testSecret, 7200)
}

// nextRequest builds the follow-up request a browser would send, carrying
// the cookies the previous response set.
func nextRequest(w *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		if c.Value != "" && c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func TestAuthRoundTrip(t *testing.T) {
	m := newTestManager()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	require.NoError(t, m.SetAuth(w, r, "alice", "session-1"))

	userID, sessionID, ok := m.Auth(nextRequest(w))
	assert.True(t, ok)
	assert.Equal(t, "alice", userID)
	assert.Equal(t, "session-1", sessionID)
}

func TestAuthWithoutCookie(t *testing.T) {
	m := newTestManager()

	_, _, ok := m.Auth(httptest.NewRequest(http.MethodGet, "/task", nil))
	assert.False(t, ok)
}

func TestDestroyExpiresCookie(t *testing.T) {
	m := newTestManager()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	require.NoError(t, m.SetAuth(w, r, "alice", "session-1"))

	w2 := httptest.NewRecorder()
	m.Destroy(w2, nextRequest(w))

	cookies := w2.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)

	_, _, ok := m.Auth(nextRequest(w2))
	assert.False(t, ok)
}

func TestFlashIsOneShot(t *testing.T) {
	m := newTestManager()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	require.NoError(t, m.AddFlash(w, r, FlashError, "ID and password do not match"))

	// First read returns the message and clears it.
	w2 := httptest.NewRecorder()
	msg, ok := m.PopFlash(w2, nextRequest(w), FlashError)
	assert.True(t, ok)
	assert.Equal(t, "ID and password do not match", msg)

	// Second read comes back empty.
	w3 := httptest.NewRecorder()
	_, ok = m.PopFlash(w3, nextRequest(w2), FlashError)
	assert.False(t, ok)
}

func TestFlashKeysAreIndependent(t *testing.T) {
	m := newTestManager()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/signup", nil)
	require.NoError(t, m.AddFlash(w, r, FlashIDError, "This ID is already in use"))

	w2 := httptest.NewRecorder()
	_, ok := m.PopFlash(w2, nextRequest(w), FlashPasswordError)
	assert.False(t, ok)

	w3 := httptest.NewRecorder()
	msg, ok := m.PopFlash(w3, nextRequest(w2), FlashIDError)
	assert.True(t, ok)
	assert.Equal(t, "This ID is already in use", msg)
}

func TestFormStateIsOneShot(t *testing.T) {
	m := newTestManager()

	errs := map[string][]string{"title": {"Title is required"}}
	old := map[string]string{"detail": "buy milk", "deadline": "2026-09-01"}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/task/new", nil)
	require.NoError(t, m.SetFormState(w, r, errs, old))

	w2 := httptest.NewRecorder()
	gotErrs, gotOld := m.PopFormState(w2, nextRequest(w))
	assert.Equal(t, errs, gotErrs)
	assert.Equal(t, old, gotOld)

	w3 := httptest.NewRecorder()
	gotErrs, gotOld = m.PopFormState(w3, nextRequest(w2))
	assert.Empty(t, gotErrs)
	assert.Empty(t, gotOld)
}

func TestCSRFToken(t *testing.T) {
	m := newTestManager()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/task/new", nil)
	token, err := m.EnsureCSRFToken(w, r)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	t.Run("token is stable across renders", func(t *testing.T) {
		w2 := httptest.NewRecorder()
		again, err := m.EnsureCSRFToken(w2, nextRequest(w))
		require.NoError(t, err)
		assert.Equal(t, token, again)
	})

	t.Run("matching token verifies", func(t *testing.T) {
		assert.True(t, m.VerifyCSRFToken(nextRequest(w), token))
	})

	t.Run("wrong or empty token fails", func(t *testing.T) {
		assert.False(t, m.VerifyCSRFToken(nextRequest(w), "forged"))
		assert.False(t, m.VerifyCSRFToken(nextRequest(w), ""))
	})

	t.Run("no session fails", func(t *testing.T) {
		assert.False(t, m.VerifyCSRFToken(httptest.NewRequest(http.MethodPost, "/task/new", nil), token))
	})
}

func TestOAuthStateIsOneShot(t *testing.T) {
	m := newTestManager()

	state, err := NewState()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/auth/github", nil)
	require.NoError(t, m.SetOAuthState(w, r, state))

	w2 := httptest.NewRecorder()
	assert.Equal(t, state, m.PopOAuthState(w2, nextRequest(w)))

	w3 := httptest.NewRecorder()
	assert.Empty(t, m.PopOAuthState(w3, nextRequest(w2)))
}

func TestNewStateIsRandom(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeannegris/equora/pkg/jwtutil"
)

type stubVerifier struct {
	sessions map[string]string
}

func (s stubVerifier) VerifySession(_ context.Context, sessionID string) (string, error) {
	return s.sessions[sessionID], nil
}

type stubAdmin struct {
	admins map[string]bool
}

func (s stubAdmin) IsAdmin(_ context.Context, userID string) (bool, error) {
	return s.admins[userID], nil
}

func echoUserID(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(UserIDFromContext(r.Context())))
}

func TestSessionGuard(t *testing.T) {
	verifier := stubVerifier{sessions: map[string]string{"good": "u1"}}
	guard := SessionGuard("equora_session", verifier, nil)
	h := guard(http.HandlerFunc(echoUserID))

	// No cookie.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Stale cookie.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "equora_session", Value: "stale"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid cookie reaches the handler with the user id in context.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "equora_session", Value: "good"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestSessionGuardAdminCheck(t *testing.T) {
	verifier := stubVerifier{sessions: map[string]string{"root": "a1", "plain": "u1"}}
	checker := stubAdmin{admins: map[string]bool{"a1": true}}
	guard := SessionGuard("equora_session", verifier, checker)
	h := guard(http.HandlerFunc(echoUserID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "equora_session", Value: "plain"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "equora_session", Value: "root"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerGuard(t *testing.T) {
	signer := jwtutil.NewSigner("secret", time.Hour)
	guard := BearerGuard(signer)
	h := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(UsernameFromContext(r.Context())))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := signer.Sign("admin")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())
}

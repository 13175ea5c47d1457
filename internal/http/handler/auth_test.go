package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	jwtToken "testCraftBot/internal/pkg/jwt"
)

const testSecret = "test-secret"

func authRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/ai/improve", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	}

	return req
}

func newAuth(t *testing.T) func(next func(w http.ResponseWriter, r *http.Request)) func(w http.ResponseWriter, r *http.Request) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return AuthMiddleware(log, testSecret)
}

func TestAuthMiddlewarePassesValidToken(t *testing.T) {
	token, err := jwtToken.New("8c2f9a1e-account", time.Minute, []byte(testSecret))
	require.NoError(t, err)

	var seenAccountID string
	next := func(w http.ResponseWriter, r *http.Request) {
		seenAccountID = AccountID(r.Context())
		w.WriteHeader(http.StatusOK)
	}

	rec := httptest.NewRecorder()
	newAuth(t)(next)(rec, authRequest(token))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "8c2f9a1e-account", seenAccountID)
}

func TestAuthMiddlewareRejectsMissingCookie(t *testing.T) {
	called := false
	next := func(w http.ResponseWriter, r *http.Request) { called = true }

	rec := httptest.NewRecorder()
	newAuth(t)(next)(rec, authRequest(""))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, called)
}

func TestAuthMiddlewareRejectsForeignToken(t *testing.T) {
	token, err := jwtToken.New("8c2f9a1e-account", time.Minute, []byte("other-secret"))
	require.NoError(t, err)

	called := false
	next := func(w http.ResponseWriter, r *http.Request) { called = true }

	rec := httptest.NewRecorder()
	newAuth(t)(next)(rec, authRequest(token))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, called)
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	token, err := jwtToken.New("8c2f9a1e-account", -time.Minute, []byte(testSecret))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	newAuth(t)(func(w http.ResponseWriter, r *http.Request) {})(rec, authRequest(token))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

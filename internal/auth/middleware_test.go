package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureUser(t *testing.T, secret string, req *http.Request) (string, Source) {
	t.Helper()
	var userID string
	var source Source
	h := AuthMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID = GetUserID(r.Context())
		source = GetSource(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)
	return userID, source
}

func TestAuthMiddleware_BearerTakesPrecedence(t *testing.T) {
	bearer, err := CreateToken("bearer-user", "secret", 1)
	require.NoError(t, err)
	cookie, err := CreateToken("cookie-user", "secret", 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookie})

	userID, source := captureUser(t, "secret", req)
	require.Equal(t, "bearer-user", userID)
	require.Equal(t, SourceBearer, source)
}

func TestAuthMiddleware_CookieAndInvalidTokens(t *testing.T) {
	cookie, err := CreateToken("cookie-user", "secret", 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookie})
	userID, source := captureUser(t, "secret", req)
	require.Equal(t, "cookie-user", userID)
	require.Equal(t, SourceCookie, source)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	userID, _ = captureUser(t, "secret", req)
	require.Empty(t, userID)
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), "u1", SourceBearer))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireCSRFForCookies(t *testing.T) {
	h := RequireCSRFForCookies(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// Cookie session without token is rejected.
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), "u1", SourceCookie))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Matching double-submit token passes.
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "tok"})
	req.Header.Set(CSRFHeaderName, "tok")
	req = req.WithContext(WithUserID(req.Context(), "u1", SourceCookie))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Bearer sessions are exempt.
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), "u1", SourceBearer))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

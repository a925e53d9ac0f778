package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/config"
	"github.com/stretchr/testify/require"
)

func responseCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestNewCookieOptions(t *testing.T) {
	dev := NewCookieOptions(&config.Config{Env: "dev", SessionDays: 7})
	require.Equal(t, CookieOptions{SessionTTL: 7 * 24 * time.Hour, Secure: false}, dev)

	prod := NewCookieOptions(&config.Config{Env: "prod", SessionDays: 1})
	require.Equal(t, CookieOptions{SessionTTL: 24 * time.Hour, Secure: true}, prod)
}

func TestCookieOptions_SetSession(t *testing.T) {
	rec := httptest.NewRecorder()
	CookieOptions{SessionTTL: 2 * 24 * time.Hour, Secure: true}.SetSession(rec, "jwt-value")

	c := responseCookie(t, rec, SessionCookieName)
	require.Equal(t, "jwt-value", c.Value)
	require.Equal(t, "/", c.Path)
	require.Equal(t, 2*24*60*60, c.MaxAge)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestCookieOptions_SetCSRFIsReadableByClient(t *testing.T) {
	rec := httptest.NewRecorder()
	CookieOptions{}.SetCSRF(rec, "csrf-value")

	c := responseCookie(t, rec, CSRFCookieName)
	require.Equal(t, "csrf-value", c.Value)
	require.False(t, c.HttpOnly)
	require.False(t, c.Secure)
}

func TestClearSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearSessionCookie(rec)

	c := responseCookie(t, rec, SessionCookieName)
	require.Empty(t, c.Value)
	require.Negative(t, c.MaxAge)
}

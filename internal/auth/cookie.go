package auth

import (
	"net/http"
	"time"

	"github.com/aliuyar1234/okrlaunch/internal/config"
)

const SessionCookieName = "okr_session"

// CookieOptions carries the per-deployment cookie attributes. Both cookies
// are SameSite=Lax and scoped to "/".
type CookieOptions struct {
	SessionTTL time.Duration
	Secure     bool
}

// NewCookieOptions marks cookies Secure outside dev and lets the session
// cookie live as long as the session token.
func NewCookieOptions(cfg *config.Config) CookieOptions {
	return CookieOptions{
		SessionTTL: cfg.SessionTTL(),
		Secure:     !cfg.IsDev(),
	}
}

// SetSession stores the session JWT in an HttpOnly cookie.
func (o CookieOptions) SetSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(o.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetCSRF stores the double-submit token where the browser client can read
// it back into the X-CSRF-Token header.
func (o CookieOptions) SetCSRF(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie. Browsers match deletions
// by name and path only, so no options are needed.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func GetSessionCookie(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

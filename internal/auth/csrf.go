package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
)

const (
	CSRFCookieName = "_csrf"
	CSRFHeaderName = "X-CSRF-Token"

	csrfTokenBytes = 32
)

var (
	ErrCSRFMissing  = errors.New("missing CSRF cookie or header")
	ErrCSRFMismatch = errors.New("CSRF token mismatch")
)

// GenerateCSRFToken returns a base64url token for the double-submit cookie.
func GenerateCSRFToken() (string, error) {
	return secureRandomString(csrfTokenBytes)
}

func GetCSRFCookie(r *http.Request) string {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ValidateCSRF requires the header to echo the cookie.
func ValidateCSRF(r *http.Request) error {
	cookieToken := GetCSRFCookie(r)
	headerToken := r.Header.Get(CSRFHeaderName)
	if cookieToken == "" || headerToken == "" {
		return ErrCSRFMissing
	}
	if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(headerToken)) != 1 {
		return ErrCSRFMismatch
	}
	return nil
}

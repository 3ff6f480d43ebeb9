package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"
)

const (
	csrfCookieName = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	csrfFormField  = "csrf_token"
)

var secureCookies bool

// SetSecureCookies marks issued cookies Secure (production behind TLS).
func SetSecureCookies(v bool) { secureCookies = v }

// CSRF issues a double-submit CSRF cookie and verifies modifying requests
// carry the same token in the X-CSRF-Token header or the csrf_token form field.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(csrfCookieName); err == nil && len(c.Value) == 32 {
			token = c.Value
		}

		if !isSafeMethod(r.Method) {
			sent := r.Header.Get(csrfHeaderName)
			if sent == "" {
				sent = r.PostFormValue(csrfFormField)
			}
			if token == "" || sent == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
				WriteError(w, r, http.StatusForbidden, "invalid CSRF token")
				return
			}
		}

		if token == "" {
			token = newCSRFToken()
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: false,
				Secure:   secureCookies,
				SameSite: http.SameSiteLaxMode,
				Expires:  time.Now().Add(24 * time.Hour),
			})
		}

		next.ServeHTTP(w, r.WithContext(WithCSRFToken(r.Context(), token)))
	})
}

func newCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

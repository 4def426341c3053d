package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"

	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/utils"
)

const csrfCookieName = "_csrf"

// GetCSRFToken issues a fresh CSRF token as both a cookie and a response
// header/body value for the double-submit check.
func GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	token := generateRandomToken()

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		MaxAge:   3600,
	})

	w.Header().Set("X-CSRF-Token", token)
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"csrfToken": token,
	})
}

// CSRFMiddleware enforces the double-submit cookie pattern on mutating
// requests: the X-CSRF-Token header must match the CSRF cookie.
func CSRFMiddleware(authKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(csrfCookieName)
			if err != nil || cookie.Value == "" {
				logger.L.Warn("CSRF cookie missing", "method", r.Method, "path", r.URL.Path)
				utils.SendJSONError(w, "CSRF token missing", http.StatusForbidden)
				return
			}
			headerToken := r.Header.Get("X-CSRF-Token")
			if !tokensMatch(authKey, cookie.Value, headerToken) {
				logger.L.Warn("CSRF token mismatch", "method", r.Method, "path", r.URL.Path)
				utils.SendJSONError(w, "CSRF token invalid", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tokensMatch compares the two submitted tokens in constant time, keyed so
// the comparison cannot be used as an oracle.
func tokensMatch(authKey []byte, cookieToken, headerToken string) bool {
	if cookieToken == "" || headerToken == "" {
		return false
	}
	mac := hmac.New(sha256.New, authKey)
	mac.Write([]byte(cookieToken))
	cookieSum := mac.Sum(nil)

	mac = hmac.New(sha256.New, authKey)
	mac.Write([]byte(headerToken))
	headerSum := mac.Sum(nil)

	return hmac.Equal(cookieSum, headerSum)
}

func generateRandomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.L.Error("Failed to generate CSRF token", "error", err)
		return ""
	}
	return base64.URLEncoding.EncodeToString(b)
}

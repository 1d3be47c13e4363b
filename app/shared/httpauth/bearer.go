package httpauth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerMatches reports whether the Authorization header carries exactly the
// expected secret. An empty secret never matches.
func BearerMatches(header, secret string) bool {
	if secret == "" || !strings.HasPrefix(header, bearerPrefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

// RequireBearer rejects requests whose bearer credential is missing or wrong.
func RequireBearer(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !BearerMatches(r.Header.Get("Authorization"), secret) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

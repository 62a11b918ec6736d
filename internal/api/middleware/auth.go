package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/clearbooks/reconcile-backend/internal/api/dto"
)

// Auth returns middleware enforcing a static bearer token. An empty token
// disables authentication entirely (local development). Session/identity
// resolution beyond this check belongs to an upstream gateway.
func Auth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(dto.ErrorEnvelope(dto.UnauthorizedError()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

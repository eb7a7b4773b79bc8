package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// CronSecret guards the scheduled-trigger endpoints with a shared bearer
// token. Requests without a matching Authorization header get 401; when no
// secret is configured the endpoints stay locked.
func CronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

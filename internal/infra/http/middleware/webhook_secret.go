package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

const WebhookSecretHeader = "X-Webhook-Secret"

// WebhookSecret rejects requests whose shared secret header does not match.
// An empty secret leaves the route open.
func WebhookSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		want := []byte(secret)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(WebhookSecretHeader))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "UNAUTHORIZED",
					"message": "missing or invalid " + WebhookSecretHeader + " header",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// CredentialChecker reports whether the Gemini API key is configured.
type CredentialChecker interface {
	Configured() bool
}

// RequireCredential rejects requests with 400 until an API key is configured.
func RequireCredential(store CredentialChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.Configured() {
				logger.Error("API key not configured", zap.String("path", r.URL.Path))
				writeJSON(w, http.StatusBadRequest, map[string]any{
					"error": "Gemini API key not configured",
					"fix":   "Please set the API key using the /set_api_key endpoint",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

package handlers

import "net/http"

// HealthCheck reports service status and whether an API key is configured.
// GET /
func (h *Handler) HealthCheck() http.HandlerFunc {
	return h.wrap("health_check", func(w http.ResponseWriter, r *http.Request) error {
		status := "not configured"
		if h.Store.Configured() {
			status = "configured"
		}
		writeJSONResp(w, http.StatusOK, map[string]any{
			"status":         "healthy",
			"version":        Version,
			"api_key_status": status,
		})
		return nil
	})
}

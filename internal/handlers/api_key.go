package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"docextract/internal/apperr"
)

// SetAPIKey stores a new Gemini API key. The extractor reads the key from the
// store, so the next /process_image call uses it.
// POST /set_api_key {"api_key": "..."}
func (h *Handler) SetAPIKey() http.HandlerFunc {
	return h.wrap("set_api_key", func(w http.ResponseWriter, r *http.Request) error {
		var payload map[string]any
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&payload); err != nil || payload == nil {
			return apperr.Validation("API key is required")
		}
		raw, ok := payload["api_key"].(string)
		if !ok {
			return apperr.Validation("API key is required")
		}
		if strings.TrimSpace(raw) == "" {
			return apperr.Validation("API key cannot be empty")
		}

		if err := h.Store.Set(raw); err != nil {
			return err
		}

		h.Logger.Info("API key updated and configured successfully")
		writeJSONResp(w, http.StatusOK, map[string]any{
			"message": "API key updated successfully",
			"status":  "configured",
		})
		return nil
	})
}

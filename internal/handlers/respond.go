package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"docextract/internal/apperr"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func writeJSONResp(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// wrap turns an error-returning handler into an http.HandlerFunc. Every error
// leaves through writeError.
func (h *Handler) wrap(name string, fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.writeError(w, name, err)
		}
	}
}

func (h *Handler) writeError(w http.ResponseWriter, name string, err error) {
	status := apperr.StatusCode(err)
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnknown {
		h.Logger.Error("Unexpected error", zap.String("handler", name), zap.Error(err))
	} else {
		h.Logger.Error("API error", zap.String("handler", name), zap.Stringer("kind", kind), zap.Error(err))
	}
	writeJSONResp(w, status, map[string]any{
		"error":  apperr.PublicMessage(err),
		"status": "error",
	})
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"docextract/internal/handlers"
	"docextract/internal/middleware"
)

// RegisterRouter wires the API routes. Every request outside the exempt routes,
// unmatched ones included, requires a configured API key.
func RegisterRouter(h *handlers.Handler, adminSecret []byte, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.LoggingMiddleware(logger))

	// Exempt from the credential check.
	r.Get("/", h.HealthCheck())
	r.With(middleware.AdminAuth(adminSecret)).Post("/set_api_key", h.SetAPIKey())

	requireCredential := middleware.RequireCredential(h.Store, logger)
	r.Group(func(r chi.Router) {
		r.Use(requireCredential)
		r.Post("/process_image", h.ProcessImage())
	})

	// Unmatched paths and methods are not exempt either.
	r.NotFound(requireCredential(jsonStatus(http.StatusNotFound, "not found")).ServeHTTP)
	r.MethodNotAllowed(requireCredential(jsonStatus(http.StatusMethodNotAllowed, "method not allowed")).ServeHTTP)
	return r
}

func jsonStatus(status int, message string) http.Handler {
	body := []byte(`{"error":"` + message + `","status":"error"}` + "\n")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	})
}

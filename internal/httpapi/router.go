package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"propscout-engine/internal/secrets"
)

// NewRouter builds the full HTTP surface. Browser clients call the
// integration endpoint directly, so CORS is wide open.
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.SetAPIKey == nil {
		d.SetAPIKey = secrets.SetAPIKey
	}
	if d.SetMailPassword == nil {
		d.SetMailPassword = secrets.SetMailPassword
	}
	h := Handler{deps: d}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(d.Log))
	r.Use(Recover(d.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Post("/free-data-integration", h.Integrate)
	r.Get("/health", h.Health)
	r.Get("/sources", h.Sources)
	r.Get("/properties", h.Properties)
	r.Post("/secrets/api-key", h.SetAPIKeySecret)
	r.Post("/secrets/mail-password", h.SetMailPasswordSecret)

	return r
}

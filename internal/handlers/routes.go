package handlers

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ztoursph/booking-api/internal/auth"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Auth      *auth.AuthHandler
	APIKeys   *APIKeyHandler
	Packages  *PackageHandler
	Documents *DocumentHandler
	Files     *FileHandler
	Metrics   http.Handler
	// CORSOrigin enables credentialed CORS for one origin when set.
	CORSOrigin string
}

var operatorSecurity = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}

func secured(o *huma.Operation) {
	o.Security = operatorSecurity
}

func RegisterRoutes(r *chi.Mux, h Handlers) huma.API {
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if h.CORSOrigin != "" {
		r.Use(corsHandler(h.CORSOrigin))
	}

	config := huma.DefaultConfig("Z Tours Booking API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: auth.APIKeyHeader,
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/files/{bucket}/{key}", h.Files.HandleDownload)

	huma.Get(api, "/packages", h.Packages.HandleList)
	huma.Get(api, "/packages/{slug}", h.Packages.HandleGet)

	// Auth routes
	r.Get("/auth/login", h.Auth.HandleLogin)
	r.Get("/auth/callback", h.Auth.HandleCallback)

	// Operator routes
	if h.Metrics != nil {
		r.With(h.Auth.AuthMiddleware).Handle("/metrics", h.Metrics)
	}
	huma.Get(api, "/me", h.Auth.HandleMe, secured)

	huma.Post(api, "/packages/{slug}/details", h.Documents.HandleTourDetails, secured)
	huma.Post(api, "/bookings/{id}/itinerary", h.Documents.HandleItinerary, secured)
	huma.Post(api, "/bookings/itineraries", h.Documents.HandleBatch, secured)

	huma.Post(api, "/api-keys", h.APIKeys.HandleCreate, secured)
	huma.Get(api, "/api-keys", h.APIKeys.HandleList, secured)
	huma.Delete(api, "/api-keys/{id}", h.APIKeys.HandleDelete, secured)

	return api
}

func corsHandler(origin string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{strings.TrimRight(origin, "/")},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", auth.APIKeyHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

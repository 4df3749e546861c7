package discovery

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CivicAtlas/CA-Boundaries/internal/middleware"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Post("/discover", DiscoverBoundary)
	r.Post("/batch", DiscoverBatchHandler)
	r.Get("/types", GetBoundaryTypes)
	r.Get("/sources", GetSources)

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminKeyMiddleware)
		r.Delete("/cache", FlushCacheHandler)
	})

	return r
}

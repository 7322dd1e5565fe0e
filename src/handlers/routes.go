package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// NewRouter wires the local API used by the dashboard.
func NewRouter(views *ViewHandler, sync *SyncHandler, allowedOrigins []string, limiter *rate.Limiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(ContextualLoggerMiddleware)
	r.Use(EnableCORS(allowedOrigins))
	r.Use(RateLimitMiddleware(limiter))

	r.Get("/health", sync.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/screens", views.HandleListScreens)
		r.Get("/views/{screen}", views.HandleGetView)
		r.Post("/views/{screen}/refresh", views.HandleRefreshView)
		r.Delete("/views/{screen}", views.HandleReleaseView)

		r.Get("/sync/status", sync.HandleGetStatus)
		r.Post("/sync/trigger", sync.HandleTriggerSync)
		r.Get("/sync/log", sync.HandleGetSyncLog)
		r.Delete("/snapshots", sync.HandleClearSnapshots)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		sendJSONError(w, r, "Not found", http.StatusNotFound)
	})

	return r
}

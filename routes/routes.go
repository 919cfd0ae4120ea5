package routes

import (
	"net/http"

	"clementus360/nudge-agent/handlers"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAllRoutes registers all application routes
func RegisterAllRoutes(mux *http.ServeMux, h *handlers.Handler, registry *prometheus.Registry) {
	RegisterActivityRoutes(mux, h)
	RegisterClassifyRoutes(mux, h)
	RegisterNudgeRoutes(mux, h)
	RegisterAdminRoutes(mux, h, registry)
}

// RegisterActivityRoutes registers the window snapshot route
func RegisterActivityRoutes(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("GET /activity-snapshot", h.ActivitySnapshotHandler)
}

// RegisterClassifyRoutes registers the standalone classification routes
func RegisterClassifyRoutes(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("POST /classify", h.ClassifyHandler)
	mux.HandleFunc("POST /classify-local", h.ClassifyLocalHandler)
}

// RegisterNudgeRoutes registers the poke pipeline and its feedback
func RegisterNudgeRoutes(mux *http.ServeMux, h *handlers.Handler) {
	mux.HandleFunc("POST /nudge", h.NudgeHandler)
	mux.HandleFunc("POST /feedback", h.FeedbackHandler)
}

// RegisterAdminRoutes registers health, runtime config and introspection
func RegisterAdminRoutes(mux *http.ServeMux, h *handlers.Handler, registry *prometheus.Registry) {
	mux.HandleFunc("GET /health", h.HealthHandler)
	mux.HandleFunc("GET /config", h.GetConfigHandler)
	mux.HandleFunc("POST /config", h.UpdateConfigHandler)
	mux.HandleFunc("GET /cache/stats", h.CacheStatsHandler)
	if registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
}

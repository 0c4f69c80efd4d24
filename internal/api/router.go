package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/presshub/presshub/internal/api/handler"
	apimw "github.com/presshub/presshub/internal/api/middleware"
	"github.com/presshub/presshub/internal/scheduler"
	"github.com/presshub/presshub/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	svc *service.ContentService,
	sched *scheduler.Scheduler,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)            // recover panics, return 500
	r.Use(chimw.RealIP)               // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(2 << 20)) // 2 MB max request body
	r.Use(apimw.RequestID)            // X-Request-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	ch := handler.NewContentHandler(svc, logger)
	sh := handler.NewSchedulerHandler(sched, logger)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/content", ch.Create)
		r.Get("/content", ch.List)
		r.Get("/content/{id}", ch.GetByID)
		r.Put("/content/{id}", ch.Update)
		r.Delete("/content/{id}", ch.Delete)

		// Editorial transitions; all take {revision} for optimistic locking.
		r.Post("/content/{id}/submit", ch.Submit)
		r.Post("/content/{id}/reject", ch.Reject)
		r.Post("/content/{id}/schedule", ch.Schedule)
		r.Post("/content/{id}/unschedule", ch.Unschedule)
		r.Post("/content/{id}/publish", ch.Publish)
		r.Post("/content/{id}/unpublish", ch.Unpublish)

		// Publishing loop observability and manual trigger.
		r.Get("/scheduler/status", sh.Status)
		r.Post("/scheduler/run", sh.Run)
	})

	return r
}

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lexcram/recall-api/internal/api"
	apimiddleware "github.com/lexcram/recall-api/internal/api/middleware"
	"github.com/lexcram/recall-api/internal/platform/metrics"
)

// setupRouter configures the application router: standard chi middleware,
// tracing and request metrics, then the authenticated review routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)
	r.Use(apimiddleware.MetricsMiddleware(app.collector))

	authMiddleware := apimiddleware.NewAuthMiddleware(app.tokenVerifier)
	reviewHandler := api.NewReviewHandler(
		app.reviewService,
		app.sessionManager,
		app.collector,
		app.logger,
	)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(app.rateLimiter.General())

			r.Route("/review", func(r chi.Router) {
				// Card ingestion carries its own tighter limit on top of
				// the general one.
				r.With(app.rateLimiter.Ingest()).Post("/cards", reviewHandler.IngestCards)
				r.Get("/cards", reviewHandler.ListCards)
				r.Get("/due", reviewHandler.GetDueCards)
				r.Get("/stats", reviewHandler.GetStats)

				r.Post("/sessions", reviewHandler.StartSession)
				r.Get("/sessions/{sessionID}", reviewHandler.GetSessionSummary)
				r.Post("/sessions/{sessionID}/reveal", reviewHandler.RevealAnswer)
				r.Post("/sessions/{sessionID}/grade", reviewHandler.GradeCard)
			})
		})
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler(app.registry))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}

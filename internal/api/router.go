package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Admit/internal/advisor"
	"github.com/MikeSquared-Agency/Admit/internal/catalog"
)

// Service is the advisory surface the handlers depend on.
type Service interface {
	Score(req advisor.Request) (*advisor.ScoreReport, error)
	Evaluate(ctx context.Context, req advisor.Request) (*advisor.Evaluation, error)
	Institutions() ([]catalog.Institution, error)
	Institution(id string) (catalog.Institution, error)
	Reload(ctx context.Context) (catalog.Report, error)
	Validate(ctx context.Context) (catalog.Report, error)
}

func NewRouter(svc Service, adminToken string, rateLimit int, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(rateLimit))

	scores := NewScoresHandler(svc, logger)
	institutions := NewInstitutionsHandler(svc)
	admin := NewAdminHandler(svc, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/scores", scores.Score)
		r.Post("/eligibility", scores.Eligibility)

		r.Get("/institutions", institutions.List)
		r.Get("/institutions/{id}", institutions.Get)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(adminToken))
			r.Post("/admin/catalog/reload", admin.Reload)
			r.Get("/admin/catalog/validate", admin.Validate)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

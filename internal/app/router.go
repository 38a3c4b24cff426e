package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/grupoebmx/backendgrupoeb/internal/finance"
	"github.com/grupoebmx/backendgrupoeb/internal/observability"
	"github.com/grupoebmx/backendgrupoeb/internal/orders"
	"github.com/grupoebmx/backendgrupoeb/internal/pipeline"
	"github.com/grupoebmx/backendgrupoeb/internal/production"
	"github.com/grupoebmx/backendgrupoeb/internal/retention"
	"github.com/grupoebmx/backendgrupoeb/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	OrdersHandler     *orders.Handler
	PipelineHandler   *pipeline.Handler
	ProductionHandler *production.Handler
	FinanceHandler    *finance.Handler
	RetentionHandler  *retention.Handler
	JobsHandler       *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with the service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/orders", func(sub chi.Router) {
			params.OrdersHandler.MountRoutes(sub)
			params.FinanceHandler.MountOrderRoutes(sub)
			params.RetentionHandler.MountOrderRoutes(sub)
		})
		api.Route("/stages", func(sub chi.Router) {
			params.PipelineHandler.MountRoutes(sub)
		})
		api.Route("/production-orders", func(sub chi.Router) {
			params.RetentionHandler.MountProductionRoutes(sub)
			params.ProductionHandler.MountRoutes(sub)
		})
		params.FinanceHandler.MountPaymentRoutes(api)
		if params.JobsHandler != nil {
			api.Route("/jobs", func(sub chi.Router) {
				params.JobsHandler.MountRoutes(sub)
			})
		}
	})

	return r
}

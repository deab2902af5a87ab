package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockyard-wms/stockyard/internal/bins"
	"github.com/stockyard-wms/stockyard/internal/observability"
	"github.com/stockyard-wms/stockyard/internal/products"
	"github.com/stockyard-wms/stockyard/internal/reports"
	"github.com/stockyard-wms/stockyard/internal/snapshot"
	"github.com/stockyard-wms/stockyard/internal/stock"
	"github.com/stockyard-wms/stockyard/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	BinsHandler     *bins.Handler
	ProductsHandler *products.Handler
	StockHandler    *stock.Handler
	ReportsHandler  *reports.Handler
	SnapshotHandler *snapshot.Handler
	JobsHandler     *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Stockyard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/bins", params.BinsHandler.MountRoutes)
	r.Route("/products", params.ProductsHandler.MountRoutes)
	r.Route("/stock", params.StockHandler.MountRoutes)
	r.Route("/reports", params.ReportsHandler.MountRoutes)
	if params.SnapshotHandler != nil {
		r.Route("/snapshots", params.SnapshotHandler.MountRoutes)
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	return r
}

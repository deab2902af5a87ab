package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/stockyard-wms/stockyard/internal/app"
	"github.com/stockyard-wms/stockyard/internal/bins"
	jobmetrics "github.com/stockyard-wms/stockyard/internal/jobs"
	"github.com/stockyard-wms/stockyard/internal/observability"
	"github.com/stockyard-wms/stockyard/internal/platform/cache"
	"github.com/stockyard-wms/stockyard/internal/platform/db"
	"github.com/stockyard-wms/stockyard/internal/products"
	"github.com/stockyard-wms/stockyard/internal/reports"
	"github.com/stockyard-wms/stockyard/internal/snapshot"
	"github.com/stockyard-wms/stockyard/internal/stock"
	"github.com/stockyard-wms/stockyard/jobs"
)

// productDefaults adapts the product master to the stock engine's
// defaults lookup.
type productDefaults struct {
	catalog *products.Catalog
}

func (p productDefaults) Defaults(code string) (stock.ProductDefaults, bool) {
	prod, err := p.catalog.Get(code)
	if err != nil {
		return stock.ProductDefaults{}, false
	}
	return stock.ProductDefaults{Unit: prod.DefaultUnit, Category: prod.DefaultCategory}, true
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	zoneConfig, err := bins.ParseZoneTable(cfg.ZoneTable)
	if err != nil {
		logger.Error("parse zone table", slog.Any("error", err))
		os.Exit(1)
	}
	binCatalog, err := bins.NewCatalog(zoneConfig)
	if err != nil {
		logger.Error("build bin catalog", slog.Any("error", err))
		os.Exit(1)
	}
	scorer := bins.NewScorer(zoneConfig)

	productCatalog := products.NewCatalog()
	store := stock.NewStore()
	planner := stock.NewPlanner(store, scorer)

	// Redis and Postgres are optional; the engine degrades to uncached
	// in-process operation when either is unreachable.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	stockService := stock.NewService(store, planner, binCatalog, productDefaults{catalog: productCatalog}, reportCache, logger)
	productService := products.NewService(productCatalog, store, logger)
	reportService := reports.NewService(store, productCatalog, reportCache, logger)

	var repo snapshot.Repository
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Warn("postgres unavailable, snapshots held in memory", slog.Any("error", err))
		repo = snapshot.NewMemoryRepository()
	} else {
		defer pool.Close()
		repo = snapshot.NewPostgresRepository(pool)
	}
	snapshotService := snapshot.NewService(store, productCatalog, binCatalog, repo, cfg.RestoreGuardRatio, logger)

	// The background worker shares the in-process engine, so it runs inside
	// this binary rather than as a separate process.
	jobsHandler := jobs.NewHandler(nil, nil, logger)
	if redisClient != nil && !app.InTestMode() {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() { _ = inspector.Close() }()
		jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Error("init job client", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = jobClient.Close() }()
		jobsHandler = jobs.NewHandler(inspector, jobClient, logger)

		jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())
		snapshotJob := jobs.NewSnapshotPersistJob(snapshotService, logger, jobMetrics)
		integrityJob := jobs.NewLedgerIntegrityJob(store, logger, jobMetrics)

		snapshotTask, err := jobs.NewSnapshotPersistTask("scheduled")
		if err != nil {
			logger.Error("build snapshot task", slog.Any("error", err))
			os.Exit(1)
		}
		integrityTask, err := jobs.NewLedgerIntegrityTask("scheduled")
		if err != nil {
			logger.Error("build integrity task", slog.Any("error", err))
			os.Exit(1)
		}

		worker, err := jobs.NewWorker(jobs.WorkerConfig{
			RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
			Logger:    logger,
			Handlers: []jobs.TaskHandler{
				{Type: jobs.TaskSnapshotPersist, Handler: snapshotJob.Handle},
				{Type: jobs.TaskLedgerIntegrity, Handler: integrityJob.Handle},
			},
			Cron: []jobs.CronRegistration{
				{Spec: cfg.SnapshotCron, Task: snapshotTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
				{Spec: cfg.IntegrityCron, Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			},
		})
		if err != nil {
			logger.Error("init worker", slog.Any("error", err))
			os.Exit(1)
		}
		go func() {
			if err := worker.Run(ctx); err != nil && err != context.Canceled {
				logger.Error("worker run", slog.Any("error", err))
			}
		}()
	}

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		BinsHandler:     bins.NewHandler(logger, binCatalog, scorer),
		ProductsHandler: products.NewHandler(logger, productService),
		StockHandler:    stock.NewHandler(logger, stockService),
		ReportsHandler:  reports.NewHandler(logger, reportService),
		SnapshotHandler: snapshot.NewHandler(logger, snapshotService),
		JobsHandler:     jobsHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

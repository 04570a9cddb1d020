package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eugenenazirov/knapsack-allocator/internal/allocator"
	"github.com/eugenenazirov/knapsack-allocator/internal/api"
	"github.com/eugenenazirov/knapsack-allocator/internal/config"
	"github.com/eugenenazirov/knapsack-allocator/internal/metrics"
	"github.com/eugenenazirov/knapsack-allocator/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage  storage.Storage
	solver   allocator.Solver
	registry *prometheus.Registry
	recorder *metrics.Recorder
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetContainers(cfg.InitialContainers); err != nil {
		return nil, fmt.Errorf("failed to apply initial containers: %w", err)
	}

	strategy := cfg.DefaultStrategy
	if strategy == "" {
		strategy = allocator.StrategyExact
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(registry)

	solver := allocator.New(
		allocator.WithMaxCapacity(cfg.MaxCapacity),
		allocator.WithMaxTableCells(cfg.MaxTableCells),
	)
	handler := api.NewHandler(solver, store,
		api.WithDefaultStrategy(strategy),
		api.WithMaxItems(cfg.MaxItems),
		api.WithMetrics(recorder),
	)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	rootHandler := BuildRootHandler(apiRouter, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &App{
		storage:  store,
		solver:   solver,
		registry: registry,
		recorder: recorder,
		handler:  handler,
		router:   apiRouter,
		logger:   logger,
		server:   NewServer(cfg, rootHandler),
	}, nil
}

// BuildRootHandler mounts the API router under /api/ and the metrics handler under /metrics.
// A nil metricsHandler leaves /metrics unmounted.
func BuildRootHandler(apiHandler, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.server.Addr),
		)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

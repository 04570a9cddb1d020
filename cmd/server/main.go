package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/knapsack-allocator/internal/allocator"
	"github.com/eugenenazirov/knapsack-allocator/internal/application"
	"github.com/eugenenazirov/knapsack-allocator/internal/config"
	"github.com/eugenenazirov/knapsack-allocator/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("knapsack-server", "Knapsack Allocator - distributes weighted items across capacity-limited containers")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	envFile := kingpinApp.Flag("env-file", "Path to a dotenv file loaded before reading the environment").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	strategy := kingpinApp.Flag("strategy", "Default allocation strategy").Enum(strategyNames()...)
	containersStr := kingpinApp.Flag("containers", `Comma-separated initial containers, e.g. "Knapsack 1:10,Knapsack 2:8"`).String()
	maxCapacity := kingpinApp.Flag("max-capacity", "Largest container capacity accepted (set 0 for no limit)").Default("-1").Int()
	maxTableCells := kingpinApp.Flag("max-table-cells", "Largest exact-strategy table (items+1 x capacity+1) accepted (set 0 for no limit)").Default("-1").Int()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		EnvFile:    *envFile,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *strategy != "" {
		overrides.Strategy = strategy
	}

	if *containersStr != "" {
		overrides.ContainersStr = containersStr
	}

	if *maxCapacity >= 0 {
		overrides.MaxCapacity = maxCapacity
	}

	if *maxTableCells >= 0 {
		overrides.MaxTableCells = maxTableCells
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(logging.WithLevel(cfg.LogLevel))
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.String("strategy", string(cfg.DefaultStrategy)),
		zap.Int("containers", len(cfg.InitialContainers)),
		zap.Int("max_capacity", cfg.MaxCapacity),
		zap.Int("max_table_cells", cfg.MaxTableCells),
	)

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func strategyNames() []string {
	strategies := allocator.Strategies()
	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, string(s))
	}
	return names
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}

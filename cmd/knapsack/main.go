package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/knapsack-allocator/internal/allocator"
	"github.com/eugenenazirov/knapsack-allocator/internal/dataset"
	"github.com/eugenenazirov/knapsack-allocator/internal/logging"
	"github.com/eugenenazirov/knapsack-allocator/internal/report"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	app := kingpin.New("knapsack", "Distributes weighted items across capacity-limited containers and prints the result")
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)
	terminated := -1
	app.Terminate(func(code int) { terminated = code })

	strategy := app.Flag("strategy", "Allocation strategy ("+strategyList()+"). Defaults to the dataset's strategy, then exact").String()
	format := app.Flag("format", "Output format").Default("table").Enum(report.Formats()...)
	maxCapacity := app.Flag("max-capacity", "Largest container capacity accepted (0 disables the check)").Default("100000").Int()
	maxTableCells := app.Flag("max-table-cells", "Largest exact-strategy table (items+1 x capacity+1) accepted (0 disables the check)").Default("10000000").Int()
	logLevel := app.Flag("log-level", "Log level (debug, info, warn, error)").Default("warn").String()
	dataFile := app.Arg("data-file", "YAML or JSON dataset; the built-in sample is used when omitted").String()

	if _, err := app.Parse(args); err != nil {
		fmt.Fprintf(stderr, "knapsack: %v\n", err)
		return exitUsage
	}
	if terminated >= 0 {
		// --help printed usage; nothing else runs.
		return terminated
	}

	logger, err := logging.New(
		logging.WithEncoding("console"),
		logging.WithLevel(*logLevel),
		logging.WithWriter(stderr),
	)
	if err != nil {
		fmt.Fprintf(stderr, "knapsack: %v\n", err)
		return exitUsage
	}
	defer func() {
		_ = logger.Sync()
	}()

	ds := dataset.Sample()
	if *dataFile != "" {
		ds, err = dataset.Load(*dataFile)
		if err != nil {
			logger.Error("failed to load dataset", zap.String("path", *dataFile), zap.Error(err))
			return exitInvalid
		}
	}

	selected, err := selectStrategy(*strategy, ds.Strategy)
	if err != nil {
		logger.Error("invalid strategy", zap.Error(err))
		return exitInvalid
	}

	solver := allocator.New(
		allocator.WithMaxCapacity(*maxCapacity),
		allocator.WithMaxTableCells(*maxTableCells),
	)
	start := time.Now()
	res, err := solver.Solve(ds.Items, ds.Containers, selected)
	if err != nil {
		logger.Error("allocation rejected", zap.String("strategy", string(selected)), zap.Error(err))
		return exitInvalid
	}
	logger.Debug("allocation finished",
		zap.String("strategy", string(selected)),
		zap.Int("items", len(ds.Items)),
		zap.Int("assigned", res.AssignedCount()),
		zap.Int("leftover", len(res.Leftover)),
		zap.Duration("duration", time.Since(start)),
	)

	if err := report.NewReporter(*format, stdout).Report(context.Background(), res); err != nil {
		logger.Error("failed to write report", zap.Error(err))
		return exitInvalid
	}
	return exitOK
}

// selectStrategy prefers the flag, then the dataset, then exact.
func selectStrategy(flag, fromDataset string) (allocator.Strategy, error) {
	switch {
	case strings.TrimSpace(flag) != "":
		return allocator.ParseStrategy(flag)
	case strings.TrimSpace(fromDataset) != "":
		return allocator.ParseStrategy(fromDataset)
	default:
		return allocator.StrategyExact, nil
	}
}

func strategyList() string {
	names := make([]string, 0, 2)
	for _, s := range allocator.Strategies() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

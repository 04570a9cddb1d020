package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/eugenenazirov/knapsack-allocator/internal/allocator"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "STRATEGY", "CONTAINERS", "MAX_CAPACITY", "MAX_ITEMS", "MAX_TABLE_CELLS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

// unsetEnv removes key for the duration of the test so that a dotenv file may set it.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.DefaultStrategy != allocator.StrategyExact {
		t.Fatalf("expected exact strategy by default, got %s", cfg.DefaultStrategy)
	}
	if len(cfg.InitialContainers) != 2 {
		t.Fatalf("expected default containers, got %v", cfg.InitialContainers)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if cfg.MaxCapacity != defaultMaxCapacity || cfg.MaxItems != defaultMaxItems {
		t.Fatalf("unexpected limits: %d / %d", cfg.MaxCapacity, cfg.MaxItems)
	}
	if cfg.MaxTableCells != defaultMaxTableCells {
		t.Fatalf("expected default table cell limit, got %d", cfg.MaxTableCells)
	}
}

func TestLoadMaxTableCells(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_TABLE_CELLS", "5000")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MaxTableCells != 5000 {
		t.Fatalf("expected env table cell limit 5000, got %d", cfg.MaxTableCells)
	}

	path := writeFile(t, "config.yaml", "max_table_cells: 6000\n")
	cfg, err = Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MaxTableCells != 6000 {
		t.Fatalf("expected YAML table cell limit 6000, got %d", cfg.MaxTableCells)
	}

	cli := 0
	cfg, err = Load(&CLIOverrides{ConfigFile: path, MaxTableCells: &cli})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MaxTableCells != 0 {
		t.Fatalf("expected CLI to disable the table cell limit, got %d", cfg.MaxTableCells)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STRATEGY", "greedy")
	t.Setenv("CONTAINERS", "A:10, B:20 , 30")
	t.Setenv("MAX_CAPACITY", "500")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.DefaultStrategy != allocator.StrategyGreedy {
		t.Fatalf("expected greedy, got %s", cfg.DefaultStrategy)
	}
	want := []allocator.RawContainer{{Name: "A", Capacity: 10}, {Name: "B", Capacity: 20}, {Capacity: 30}}
	if !slices.Equal(cfg.InitialContainers, want) {
		t.Fatalf("unexpected containers: %v", cfg.InitialContainers)
	}
	if cfg.MaxCapacity != 500 {
		t.Fatalf("expected max capacity 500, got %d", cfg.MaxCapacity)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7000")
	t.Setenv("STRATEGY", "exact")

	path := writeFile(t, "config.yaml", `
port: "7100"
strategy: greedy
containers:
  - name: small
    capacity: 4
  - name: large
    capacity: 40
enable_request_logging: false
rate_limit:
  rps: 0
shutdown_grace_period: 3s
`)

	port := "7200"
	cfg, err := Load(&CLIOverrides{ConfigFile: path, Port: &port})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "7200" {
		t.Fatalf("expected CLI port to win, got %s", cfg.Port)
	}
	if cfg.DefaultStrategy != allocator.StrategyGreedy {
		t.Fatalf("expected YAML strategy to beat env, got %s", cfg.DefaultStrategy)
	}
	if len(cfg.InitialContainers) != 2 || cfg.InitialContainers[1].Name != "large" {
		t.Fatalf("unexpected containers: %v", cfg.InitialContainers)
	}
	if cfg.EnableRequestLogging {
		t.Fatalf("expected request logging disabled by YAML")
	}
	if cfg.RateLimitRPS != 0 {
		t.Fatalf("expected explicit zero rps, got %v", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("expected burst to keep its default, got %d", cfg.RateLimitBurst)
	}
	if cfg.ShutdownGracePeriod != 3*time.Second {
		t.Fatalf("unexpected grace period %s", cfg.ShutdownGracePeriod)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	clearEnv(t)
	unsetEnv(t, "STRATEGY")
	t.Setenv("PORT", "6000")

	envFile := writeFile(t, "test.env", "STRATEGY=greedy\nPORT=6100\n")

	cfg, err := Load(&CLIOverrides{EnvFile: envFile})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DefaultStrategy != allocator.StrategyGreedy {
		t.Fatalf("expected strategy from env file, got %s", cfg.DefaultStrategy)
	}
	if cfg.Port != "6000" {
		t.Fatalf("expected process env to beat env file, got %s", cfg.Port)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	badStrategy := "simulated-annealing"
	if _, err := Load(&CLIOverrides{Strategy: &badStrategy}); !errors.Is(err, allocator.ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}

	if _, err := Load(&CLIOverrides{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing config file")
	}

	if _, err := Load(&CLIOverrides{EnvFile: filepath.Join(t.TempDir(), "missing.env")}); err == nil {
		t.Fatalf("expected error for missing env file")
	}

	tooBig := "big:200"
	limit := 100
	if _, err := Load(&CLIOverrides{ContainersStr: &tooBig, MaxCapacity: &limit}); err == nil {
		t.Fatalf("expected error for container above max capacity")
	}

	path := writeFile(t, "bad.yaml", "idle_timeout: soon\n")
	if _, err := Load(&CLIOverrides{ConfigFile: path}); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestParseContainers(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := parseContainers("10, Knapsack 2:8,a:b:3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []allocator.RawContainer{{Capacity: 10}, {Name: "Knapsack 2", Capacity: 8}, {Name: "a:b", Capacity: 3}}
		if !slices.Equal(got, want) {
			t.Fatalf("unexpected containers: %v", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := parseContainers(" , "); err == nil {
			t.Fatalf("expected error for empty string")
		}
		if _, err := parseContainers("1,a"); err == nil {
			t.Fatalf("expected error for invalid integer")
		}
		if _, err := parseContainers("x:0"); err == nil {
			t.Fatalf("expected error for zero capacity")
		}
	})
}

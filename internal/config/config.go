package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/knapsack-allocator/internal/allocator"
	"github.com/eugenenazirov/knapsack-allocator/internal/storage"
)

const (
	defaultPort           = "8080"
	defaultStrategy       = allocator.StrategyExact
	defaultMaxCapacity    = 100_000
	defaultMaxItems       = 1_000
	defaultMaxTableCells  = 10_000_000
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultEnvFile        = ".env"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	DefaultStrategy      allocator.Strategy
	InitialContainers    []allocator.RawContainer
	MaxCapacity          int
	MaxItems             int
	MaxTableCells        int
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	LogLevel             string
}

// yamlConfig represents the YAML configuration file structure.
// Pointers distinguish "absent" from an explicit zero value.
type yamlConfig struct {
	Port                 string                   `yaml:"port"`
	Strategy             string                   `yaml:"strategy"`
	Containers           []allocator.RawContainer `yaml:"containers"`
	MaxCapacity          *int                     `yaml:"max_capacity"`
	MaxItems             *int                     `yaml:"max_items"`
	MaxTableCells        *int                     `yaml:"max_table_cells"`
	ShutdownGracePeriod  string                   `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string                   `yaml:"read_header_timeout"`
	WriteTimeout         string                   `yaml:"write_timeout"`
	IdleTimeout          string                   `yaml:"idle_timeout"`
	EnableRequestLogging *bool                    `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit            `yaml:"rate_limit"`
	LogLevel             string                   `yaml:"log_level"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	EnvFile        string
	Port           *string
	Strategy       *string
	ContainersStr  *string
	MaxCapacity    *int
	MaxTableCells  *int
	RateLimitRPS   *float64
	RateLimitBurst *int
	LogLevel       *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	envFile := ""
	if overrides != nil {
		envFile = overrides.EnvFile
	}
	if err := loadDotEnv(envFile); err != nil {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	// Environment is the lowest explicit source.
	applyEnvConfig(&cfg)

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		DefaultStrategy:      defaultStrategy,
		InitialContainers:    storage.DefaultContainers(),
		MaxCapacity:          defaultMaxCapacity,
		MaxItems:             defaultMaxItems,
		MaxTableCells:        defaultMaxTableCells,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		LogLevel:             "info",
	}
}

// loadDotEnv populates the process environment from a dotenv file. Variables
// already present in the environment win. A missing default .env is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); errors.Is(err, os.ErrNotExist) {
			return nil
		}
		path = defaultEnvFile
	}
	return godotenv.Load(path)
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.Strategy != "" {
		strategy, err := allocator.ParseStrategy(yamlCfg.Strategy)
		if err != nil {
			return err
		}
		cfg.DefaultStrategy = strategy
	}

	if len(yamlCfg.Containers) > 0 {
		cfg.InitialContainers = yamlCfg.Containers
	}

	if yamlCfg.MaxCapacity != nil {
		cfg.MaxCapacity = *yamlCfg.MaxCapacity
	}

	if yamlCfg.MaxItems != nil {
		cfg.MaxItems = *yamlCfg.MaxItems
	}

	if yamlCfg.MaxTableCells != nil {
		cfg.MaxTableCells = *yamlCfg.MaxTableCells
	}

	durations := []struct {
		raw    string
		target *time.Duration
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", d.raw, err)
		}
		*d.target = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if raw := strings.TrimSpace(os.Getenv("STRATEGY")); raw != "" {
		if strategy, err := allocator.ParseStrategy(raw); err == nil {
			cfg.DefaultStrategy = strategy
		}
	}

	if raw := strings.TrimSpace(os.Getenv("CONTAINERS")); raw != "" {
		containers, err := parseContainers(raw)
		if err == nil {
			cfg.InitialContainers = containers
		}
	}

	if raw := strings.TrimSpace(os.Getenv("MAX_CAPACITY")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.MaxCapacity = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("MAX_ITEMS")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.MaxItems = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("MAX_TABLE_CELLS")); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.MaxTableCells = value
		}
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.Strategy != nil && *overrides.Strategy != "" {
		strategy, err := allocator.ParseStrategy(*overrides.Strategy)
		if err != nil {
			return fmt.Errorf("parse strategy: %w", err)
		}
		cfg.DefaultStrategy = strategy
	}

	if overrides.ContainersStr != nil && *overrides.ContainersStr != "" {
		containers, err := parseContainers(*overrides.ContainersStr)
		if err != nil {
			return fmt.Errorf("parse containers: %w", err)
		}
		cfg.InitialContainers = containers
	}

	if overrides.MaxCapacity != nil && *overrides.MaxCapacity >= 0 {
		cfg.MaxCapacity = *overrides.MaxCapacity
	}

	if overrides.MaxTableCells != nil && *overrides.MaxTableCells >= 0 {
		cfg.MaxTableCells = *overrides.MaxTableCells
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if _, err := allocator.NewAllocator(cfg.DefaultStrategy); err != nil {
		return err
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.MaxCapacity < 0 {
		return fmt.Errorf("MAX_CAPACITY must be >= 0")
	}
	if cfg.MaxItems < 0 {
		return fmt.Errorf("MAX_ITEMS must be >= 0")
	}
	if cfg.MaxTableCells < 0 {
		return fmt.Errorf("MAX_TABLE_CELLS must be >= 0")
	}
	if len(cfg.InitialContainers) == 0 {
		return fmt.Errorf("containers cannot be empty")
	}
	for i, c := range cfg.InitialContainers {
		if c.Capacity <= 0 {
			return fmt.Errorf("container %d: capacity must be positive, got %d", i, c.Capacity)
		}
		if cfg.MaxCapacity > 0 && c.Capacity > cfg.MaxCapacity {
			return fmt.Errorf("container %d: capacity %d exceeds max capacity %d", i, c.Capacity, cfg.MaxCapacity)
		}
	}
	return nil
}

// parseContainers parses a comma-separated list of containers. Each entry is
// either a bare capacity ("10") or "name:capacity" ("Knapsack 1:10").
func parseContainers(raw string) ([]allocator.RawContainer, error) {
	parts := strings.Split(raw, ",")
	containers := make([]allocator.RawContainer, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var name, capacityStr string
		if idx := strings.LastIndex(part, ":"); idx >= 0 {
			name = strings.TrimSpace(part[:idx])
			capacityStr = strings.TrimSpace(part[idx+1:])
		} else {
			capacityStr = part
		}

		capacity, err := strconv.Atoi(capacityStr)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", capacityStr)
		}
		if capacity <= 0 {
			return nil, fmt.Errorf("capacity must be positive, got %d", capacity)
		}
		containers = append(containers, allocator.RawContainer{Name: name, Capacity: capacity})
	}
	if len(containers) == 0 {
		return nil, fmt.Errorf("no containers provided")
	}
	return containers, nil
}

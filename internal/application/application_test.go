package application

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/knapsack-allocator/internal/allocator"
	"github.com/eugenenazirov/knapsack-allocator/internal/config"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	cfg.InitialContainers = []allocator.RawContainer{{Name: "big", Capacity: 40}, {Name: "small", Capacity: 4}}
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	containers, err := app.storage.GetContainers()
	if err != nil {
		t.Fatalf("GetContainers returned error: %v", err)
	}
	if !slices.Equal(containers, cfg.InitialContainers) {
		t.Fatalf("expected containers %v, got %v", cfg.InitialContainers, containers)
	}
	if app.server == nil || app.router == nil || app.handler == nil || app.solver == nil || app.recorder == nil {
		t.Fatalf("expected server, router, handler, solver and recorder to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestNewReturnsErrorForInvalidContainers(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.InitialContainers = nil

	if _, err := New(cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for missing containers")
	}
}

func TestBuildRootHandlerWithoutMetrics(t *testing.T) {
	handler := BuildRootHandler(http.NotFoundHandler(), nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics handler, got %d", rec.Code)
	}
}

func TestIntegrationFlow(t *testing.T) {
	cfg := baseTestConfig(":0")
	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	handler := app.Server().Handler

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	rec = performRequest(t, handler, http.MethodPut, "/api/containers", map[string]any{
		"containers": []map[string]any{{"name": "Knapsack 1", "capacity": 10}, {"name": "Knapsack 2", "capacity": 8}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from containers update, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = performRequest(t, handler, http.MethodPost, "/api/allocate", map[string]any{
		"strategy": "greedy",
		"items": []map[string]any{
			{"name": "Item 1", "weight": 3, "value": 8, "fragile": true, "dynamic_factor": 0.7},
			{"name": "Item 2", "weight": 4, "value": 10},
			{"name": "Item 3", "weight": 2, "value": 5, "dynamic_factor": 0.9},
			{"name": "Item 4", "weight": 5, "value": 12, "fragile": true, "dynamic_factor": 0.6},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from allocate, got %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Containers []struct {
			Name        string `json:"name"`
			TotalWeight int    `json:"total_weight"`
		} `json:"containers"`
		TotalWeight int     `json:"total_weight"`
		TotalValue  float64 `json:"total_value"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.TotalWeight != 14 || len(response.Containers) != 2 {
		t.Fatalf("unexpected response %+v", response)
	}
	if response.Containers[0].TotalWeight != 9 || response.Containers[1].TotalWeight != 5 {
		t.Fatalf("unexpected container loads %+v", response.Containers)
	}

	rec = performRequest(t, handler, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `knapsack_allocations_total{status="ok",strategy="greedy"} 1`) {
		t.Fatalf("expected allocation counter in metrics output, got:\n%s", body)
	}
}

func performRequest(t *testing.T, handler http.Handler, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Port:                 port,
		DefaultStrategy:      allocator.StrategyExact,
		InitialContainers:    []allocator.RawContainer{{Name: "Knapsack 1", Capacity: 10}, {Name: "Knapsack 2", Capacity: 8}},
		MaxCapacity:          1000,
		MaxItems:             100,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}

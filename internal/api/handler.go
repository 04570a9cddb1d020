package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/eugenenazirov/knapsack-allocator/internal/allocator"
	"github.com/eugenenazirov/knapsack-allocator/internal/metrics"
	"github.com/eugenenazirov/knapsack-allocator/internal/report"
	"github.com/eugenenazirov/knapsack-allocator/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const maxRequestBodyBytes = 1 << 20

// Handler wires the solver, container storage and metrics into HTTP handlers.
type Handler struct {
	solver   allocator.Solver
	storage  storage.Storage
	recorder *metrics.Recorder

	defaultStrategy allocator.Strategy
	maxItems        int

	clock func() time.Time

	mu                  sync.RWMutex
	containersUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithDefaultStrategy sets the strategy used when a request does not name one.
func WithDefaultStrategy(strategy allocator.Strategy) HandlerOption {
	return func(h *Handler) {
		h.defaultStrategy = strategy
	}
}

// WithMaxItems caps the number of items per request. Zero disables the cap.
func WithMaxItems(limit int) HandlerOption {
	return func(h *Handler) {
		h.maxItems = limit
	}
}

// WithMetrics records every allocation run on rec.
func WithMetrics(rec *metrics.Recorder) HandlerOption {
	return func(h *Handler) {
		h.recorder = rec
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(solver allocator.Solver, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		solver:          solver,
		storage:         store,
		defaultStrategy: allocator.StrategyExact,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.containersUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetContainers(w http.ResponseWriter, r *http.Request) {
	_ = r
	containers, err := h.storage.GetContainers()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := containersResponse{
		Containers: containers,
		UpdatedAt:  h.currentContainersUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutContainers(w http.ResponseWriter, r *http.Request) {
	var req containersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Containers) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid containers", "containers must contain at least one entry")
		return
	}

	if err := h.storage.SetContainers(req.Containers); err != nil {
		if errors.Is(err, storage.ErrInvalidContainers) {
			writeError(w, http.StatusBadRequest, "Invalid containers", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markContainersUpdated()

	containers, err := h.storage.GetContainers()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := containersResponse{
		Containers: containers,
		UpdatedAt:  h.currentContainersUpdatedAt(),
		Message:    "Containers updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if h.maxItems > 0 && len(req.Items) > h.maxItems {
		writeError(w, http.StatusBadRequest, "Invalid request",
			fmt.Sprintf("at most %d items are accepted per request, got %d", h.maxItems, len(req.Items)))
		return
	}

	strategy := h.defaultStrategy
	if req.Strategy != "" {
		parsed, err := allocator.ParseStrategy(req.Strategy)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request", err.Error(), "use one of: greedy, exact")
			return
		}
		strategy = parsed
	}

	containers := req.Containers
	if len(containers) == 0 {
		stored, err := h.storage.GetContainers()
		if err != nil {
			writeInternalError(w, err)
			return
		}
		containers = stored
	}

	start := time.Now()
	result, solveErr := h.solver.Solve(req.Items, containers, strategy)
	elapsed := time.Since(start)
	h.recorder.Observe(strategy, result, elapsed, solveErr)

	if solveErr != nil {
		switch {
		case errors.Is(solveErr, allocator.ErrCapacityTooLarge):
			writeError(w, http.StatusBadRequest, "Invalid input", solveErr.Error(), "send fewer items or lower the container capacity")
		case errors.Is(solveErr, allocator.ErrInvalidItem),
			errors.Is(solveErr, allocator.ErrInvalidContainer),
			errors.Is(solveErr, allocator.ErrDuplicateName),
			errors.Is(solveErr, allocator.ErrUnknownStrategy):
			writeError(w, http.StatusBadRequest, "Invalid input", solveErr.Error())
		default:
			writeInternalError(w, solveErr)
		}
		return
	}

	resp := allocateResponse{
		Output:            report.NewOutput(result),
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) currentContainersUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.containersUpdatedAt
}

func (h *Handler) markContainersUpdated() {
	h.mu.Lock()
	h.containersUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

type containersRequest struct {
	Containers []allocator.RawContainer `json:"containers"`
}

type allocateRequest struct {
	Strategy   string                   `json:"strategy"`
	Items      []allocator.RawItem      `json:"items"`
	Containers []allocator.RawContainer `json:"containers"`
}

type allocateResponse struct {
	report.Output
	CalculationTimeMs int64 `json:"calculation_time_ms"`
}

type containersResponse struct {
	Containers []allocator.RawContainer `json:"containers"`
	UpdatedAt  time.Time                `json:"updated_at"`
	Message    string                   `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}

package allocator

import (
	"fmt"
	"math"
	"strings"
)

// Strategy selects the allocation algorithm.
type Strategy string

const (
	// StrategyGreedy places items by adjusted value into the first container with room.
	StrategyGreedy Strategy = "greedy"
	// StrategyExact solves a 0/1 knapsack per container against the shrinking pool.
	StrategyExact Strategy = "exact"
)

// Strategies lists every supported strategy.
func Strategies() []Strategy {
	return []Strategy{StrategyGreedy, StrategyExact}
}

// ParseStrategy maps a selector such as "greedy" or "exact" to a Strategy.
func ParseStrategy(raw string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(raw))); s {
	case StrategyGreedy, StrategyExact:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, raw)
	}
}

// NewAllocator returns the allocator implementing strategy.
func NewAllocator(strategy Strategy) (Allocator, error) {
	switch strategy {
	case StrategyGreedy:
		return NewGreedy(), nil
	case StrategyExact:
		return NewExact(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// Option configures a Solver.
type Option func(*solver)

// WithMaxCapacity rejects containers larger than limit. The exact strategy
// allocates a table proportional to items x capacity, so services should bound it.
// A limit of zero or less disables the check.
func WithMaxCapacity(limit int) Option {
	return func(s *solver) {
		s.maxCapacity = limit
	}
}

// WithMaxTableCells bounds the exact strategy's (items+1) x (capacity+1) table for
// every container. Solve fails with a *TableTooLargeError, which matches
// ErrCapacityTooLarge, before anything is allocated. Zero or less disables the check.
func WithMaxTableCells(limit int) Option {
	return func(s *solver) {
		s.maxTableCells = limit
	}
}

type solver struct {
	maxCapacity   int
	maxTableCells int
}

// New creates a Solver. Each Solve call works on its own copies of the input,
// so a Solver may be shared between goroutines.
func New(opts ...Option) Solver {
	s := &solver{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve validates all input up front, then runs the chosen strategy. Nothing is
// allocated if any item, container or the strategy is invalid.
func (s *solver) Solve(items []RawItem, containers []RawContainer, strategy Strategy) (Result, error) {
	alloc, err := NewAllocator(strategy)
	if err != nil {
		return Result{}, err
	}

	adjusted, err := AdjustValues(items)
	if err != nil {
		return Result{}, err
	}

	bound, err := BindContainers(containers)
	if err != nil {
		return Result{}, err
	}

	if s.maxCapacity > 0 {
		for i, c := range bound {
			if c.Capacity > s.maxCapacity {
				return Result{}, fmt.Errorf("container %d (%q): capacity %d above limit %d: %w",
					i, c.Name, c.Capacity, s.maxCapacity, ErrCapacityTooLarge)
			}
		}
	}

	if strategy == StrategyExact && s.maxTableCells > 0 {
		if err := checkTableCells(len(adjusted), bound, s.maxTableCells); err != nil {
			return Result{}, err
		}
	}

	return alloc.Allocate(adjusted, bound), nil
}

// checkTableCells assumes the whole pool reaches every container, which is the
// largest table each one can need.
func checkTableCells(items int, containers []Container, limit int) error {
	if items == 0 {
		return nil
	}
	rows := items + 1
	for i, c := range containers {
		width := c.Capacity
		if width < math.MaxInt {
			width++
		}
		if width > limit/rows {
			cells := math.MaxInt
			if width <= math.MaxInt/rows {
				cells = rows * width
			}
			return &TableTooLargeError{
				Index:    i,
				Name:     c.Name,
				Items:    items,
				Capacity: c.Capacity,
				Cells:    cells,
				Limit:    limit,
			}
		}
	}
	return nil
}

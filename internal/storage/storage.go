package storage

import (
	"errors"
	"slices"
	"sync"

	"github.com/eugenenazirov/knapsack-allocator/internal/allocator"
)

const maxContainers = 32

var (
	// ErrInvalidContainers indicates the provided container set violates validation rules.
	ErrInvalidContainers = errors.New("containers must contain between 1 and 32 entries with unique names and positive capacities")
)

var defaultContainers = []allocator.RawContainer{
	{Name: "Knapsack 1", Capacity: 10},
	{Name: "Knapsack 2", Capacity: 8},
}

// Storage provides the default container set used when a request brings none.
type Storage interface {
	GetContainers() ([]allocator.RawContainer, error)
	SetContainers(containers []allocator.RawContainer) error
}

// MemoryStorage keeps containers in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu         sync.RWMutex
	containers []allocator.RawContainer
}

// NewMemoryStorage initialises storage with a copy of the default containers.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		containers: DefaultContainers(),
	}
}

// DefaultContainers returns a copy of the default container set.
func DefaultContainers() []allocator.RawContainer {
	return slices.Clone(defaultContainers)
}

// GetContainers returns a defensive copy of the configured containers, in order.
func (s *MemoryStorage) GetContainers() ([]allocator.RawContainer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.containers), nil
}

// SetContainers validates, names and stores the provided containers.
// Order is preserved because it decides which container is filled first.
func (s *MemoryStorage) SetContainers(containers []allocator.RawContainer) error {
	normalized, err := normalizeContainers(containers)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.containers = normalized
	s.mu.Unlock()

	return nil
}

func normalizeContainers(containers []allocator.RawContainer) ([]allocator.RawContainer, error) {
	if len(containers) == 0 || len(containers) > maxContainers {
		return nil, ErrInvalidContainers
	}

	bound, err := allocator.BindContainers(containers)
	if err != nil {
		return nil, errors.Join(ErrInvalidContainers, err)
	}

	names := make(map[string]struct{}, len(bound))
	out := make([]allocator.RawContainer, 0, len(bound))
	for _, c := range bound {
		if _, ok := names[c.Name]; ok {
			return nil, ErrInvalidContainers
		}
		names[c.Name] = struct{}{}
		out = append(out, allocator.RawContainer{Name: c.Name, Capacity: c.Capacity})
	}
	return out, nil
}

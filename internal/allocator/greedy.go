package allocator

import (
	"cmp"
	"slices"
)

// Greedy places items by adjusted value, highest first, into the first
// container with room. It is fast but gives no optimality guarantee.
type Greedy struct{}

// NewGreedy returns the greedy strategy.
func NewGreedy() *Greedy {
	return &Greedy{}
}

// Strategy returns StrategyGreedy.
func (g *Greedy) Strategy() Strategy { return StrategyGreedy }

// Allocate fills containers in place and returns them with any item that fit nowhere.
func (g *Greedy) Allocate(items []Item, containers []Container) Result {
	sorted := sortByAdjustedValue(items)
	leftover := make([]Item, 0)

	// Every scan starts at the first container and only moves forward, so
	// earlier containers are filled preferentially.
	const cursor = 0

	for _, item := range sorted {
		idx := firstFit(containers, cursor, item)
		if idx < 0 {
			leftover = append(leftover, item)
			continue
		}
		containers[idx].add(item)
	}

	for i := range containers {
		containers[i].recompute()
	}

	return Result{
		Strategy:   StrategyGreedy,
		Containers: containers,
		Leftover:   leftover,
	}
}

// sortByAdjustedValue returns a copy ordered by adjusted value descending.
// Equal values keep their input order.
func sortByAdjustedValue(items []Item) []Item {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b Item) int {
		return cmp.Compare(b.AdjustedValue, a.AdjustedValue)
	})
	return sorted
}

// firstFit returns the index of the first container at or after from that can
// take the item, or -1.
func firstFit(containers []Container, from int, item Item) int {
	for i := from; i < len(containers); i++ {
		if containers[i].fits(item) {
			return i
		}
	}
	return -1
}

package allocator

import "math"

// Exact solves a 0/1 knapsack per container, in input order, against the items
// still in the pool. Each container is optimal on its own; earlier containers
// get first pick, so the overall distribution is not globally optimal.
type Exact struct{}

// NewExact returns the dynamic-programming strategy.
func NewExact() *Exact {
	return &Exact{}
}

// Strategy returns StrategyExact.
func (e *Exact) Strategy() Strategy { return StrategyExact }

// Allocate fills containers in place and returns them with the items no container took.
func (e *Exact) Allocate(items []Item, containers []Container) Result {
	pool := items

	for i := range containers {
		c := &containers[i]
		taken, _ := knapsack(pool, c.Remaining())
		if len(taken) == 0 {
			continue
		}

		committed := make(map[string]struct{}, len(taken))
		for _, idx := range taken {
			c.add(pool[idx])
			committed[pool[idx].Name] = struct{}{}
		}
		// TotalValue is the sum over Items in assignment order, not T[n][capacity].
		c.recompute()

		pool = removeByName(pool, committed)
	}

	leftover := make([]Item, len(pool))
	copy(leftover, pool)

	return Result{
		Strategy:   StrategyExact,
		Containers: containers,
		Leftover:   leftover,
	}
}

// knapsack builds the (n+1) x (capacity+1) value table over pool and walks it
// backwards. It returns the indices of the chosen items, in the order they were
// recovered, and the best attainable value.
func knapsack(pool []Item, capacity int) ([]int, float64) {
	n := len(pool)
	if n == 0 || capacity <= 0 {
		return nil, 0
	}

	width := capacity + 1
	table := make([]float64, (n+1)*width)
	at := func(i, w int) int { return i*width + w }

	for i := 1; i <= n; i++ {
		item := pool[i-1]
		for w := 0; w <= capacity; w++ {
			skip := table[at(i-1, w)]
			if item.Weight > w {
				table[at(i, w)] = skip
				continue
			}
			take := item.AdjustedValue + table[at(i-1, w-item.Weight)]
			table[at(i, w)] = math.Max(skip, take)
		}
	}

	var taken []int
	for i, w := n, capacity; i > 0 && w > 0; i-- {
		if table[at(i, w)] != table[at(i-1, w)] {
			taken = append(taken, i-1)
			w -= pool[i-1].Weight
		}
	}

	return taken, table[at(n, capacity)]
}

// removeByName returns a new slice without the named items, preserving order.
func removeByName(pool []Item, names map[string]struct{}) []Item {
	out := make([]Item, 0, len(pool)-len(names))
	for _, item := range pool {
		if _, ok := names[item.Name]; ok {
			continue
		}
		out = append(out, item)
	}
	return out
}

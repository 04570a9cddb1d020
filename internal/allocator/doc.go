// Package allocator distributes weighted, valued items across capacity-limited
// containers. Fragile items are discounted by their dynamic factor before any
// placement decision. Two strategies are provided: a greedy first-fit pass in
// descending adjusted value, and an exact per-container 0/1 knapsack that runs
// over the pool of items still unassigned. Items committed to a container are
// never reconsidered for a later one.
package allocator

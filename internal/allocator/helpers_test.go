package allocator

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

func sampleRawItems() []RawItem {
	return []RawItem{
		{Name: "Item 1", Weight: 3, Value: 8, Fragile: true, DynamicFactor: 0.7},
		{Name: "Item 2", Weight: 4, Value: 10, Fragile: false, DynamicFactor: 1.0},
		{Name: "Item 3", Weight: 2, Value: 5, Fragile: false, DynamicFactor: 0.9},
		{Name: "Item 4", Weight: 5, Value: 12, Fragile: true, DynamicFactor: 0.6},
	}
}

func sampleRawContainers() []RawContainer {
	return []RawContainer{
		{Name: "Knapsack 1", Capacity: 10},
		{Name: "Knapsack 2", Capacity: 8},
	}
}

func mustAdjust(t testing.TB, raw []RawItem) []Item {
	t.Helper()
	items, err := AdjustValues(raw)
	if err != nil {
		t.Fatalf("AdjustValues: %v", err)
	}
	return items
}

func mustBind(t testing.TB, raw []RawContainer) []Container {
	t.Helper()
	containers, err := BindContainers(raw)
	if err != nil {
		t.Fatalf("BindContainers: %v", err)
	}
	return containers
}

func itemNames(items []Item) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

// randomRawItems generates n valid items with small weights so that tables stay tiny.
func randomRawItems(rng *rand.Rand, n int) []RawItem {
	items := make([]RawItem, n)
	for i := range items {
		item := RawItem{
			Name:   fmt.Sprintf("item-%02d", i),
			Weight: rng.IntN(9) + 1,
			Value:  float64(rng.IntN(50)),
		}
		if rng.IntN(3) == 0 {
			item.Fragile = true
			item.DynamicFactor = float64(rng.IntN(10)+1) / 10
		}
		items[i] = item
	}
	return items
}

// bruteForceBest enumerates every subset and returns the best value within capacity.
func bruteForceBest(items []Item, capacity int) float64 {
	best := 0.0
	for mask := 0; mask < 1<<len(items); mask++ {
		weight := 0
		value := 0.0
		for i, item := range items {
			if mask&(1<<i) != 0 {
				weight += item.Weight
				value += item.AdjustedValue
			}
		}
		if weight <= capacity && value > best {
			best = value
		}
	}
	return best
}

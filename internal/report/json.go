package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/eugenenazirov/knapsack-allocator/internal/allocator"
)

// JSONReporter outputs the filled containers as JSON.
type JSONReporter struct {
	w io.Writer
}

// ItemView is the reported shape of an assigned or leftover item.
type ItemView struct {
	Name          string  `json:"name"`
	Weight        int     `json:"weight"`
	AdjustedValue float64 `json:"adjusted_value"`
}

// ContainerView is the reported shape of a filled container.
type ContainerView struct {
	Name        string     `json:"name"`
	Capacity    int        `json:"capacity"`
	TotalWeight int        `json:"total_weight"`
	Items       []ItemView `json:"items"`
	TotalValue  float64    `json:"total_value"`
}

// Output is the complete JSON document.
type Output struct {
	Strategy    allocator.Strategy `json:"strategy"`
	Containers  []ContainerView    `json:"containers"`
	Leftover    []ItemView         `json:"leftover"`
	TotalWeight int                `json:"total_weight"`
	TotalValue  float64            `json:"total_value"`
}

// NewOutput converts a result into its reported shape, keeping container order.
func NewOutput(res allocator.Result) Output {
	out := Output{
		Strategy:    res.Strategy,
		Containers:  make([]ContainerView, 0, len(res.Containers)),
		Leftover:    itemViews(res.Leftover),
		TotalWeight: res.TotalWeight(),
		TotalValue:  res.TotalValue(),
	}
	for _, c := range res.Containers {
		out.Containers = append(out.Containers, ContainerView{
			Name:        c.Name,
			Capacity:    c.Capacity,
			TotalWeight: c.CurrentLoad,
			Items:       itemViews(c.Items),
			TotalValue:  c.TotalValue,
		})
	}
	return out
}

func itemViews(items []allocator.Item) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, ItemView{Name: item.Name, Weight: item.Weight, AdjustedValue: item.AdjustedValue})
	}
	return views
}

func (r *JSONReporter) Report(ctx context.Context, res allocator.Result) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewOutput(res)); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

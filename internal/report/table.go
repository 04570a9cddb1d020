package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/eugenenazirov/knapsack-allocator/internal/allocator"
)

// TableReporter outputs the filled containers as terminal tables.
type TableReporter struct {
	w io.Writer
}

func (r *TableReporter) Report(ctx context.Context, res allocator.Result) error {
	fmt.Fprintf(r.w, "\n")
	fmt.Fprintf(r.w, "Knapsack Allocation (%s)\n", res.Strategy)
	fmt.Fprintf(r.w, "%s\n", strings.Repeat("=", 60))

	for _, c := range res.Containers {
		fmt.Fprintf(r.w, "\n%s (capacity %d)\n", c.Name, c.Capacity)
		if err := r.itemTable(c.Items); err != nil {
			return err
		}
		fmt.Fprintf(r.w, "Total Weight: %d  Total Value: %s\n", c.CurrentLoad, formatValue(c.TotalValue))
	}

	if len(res.Leftover) > 0 {
		fmt.Fprintf(r.w, "\nUnassigned\n")
		if err := r.itemTable(res.Leftover); err != nil {
			return err
		}
	}

	fmt.Fprintf(r.w, "\n%s\n", strings.Repeat("-", 60))
	fmt.Fprintf(r.w, "Total Weight: %d  Total Value: %s\n", res.TotalWeight(), formatValue(res.TotalValue()))
	return nil
}

func (r *TableReporter) itemTable(items []allocator.Item) error {
	if len(items) == 0 {
		fmt.Fprintf(r.w, "(empty)\n")
		return nil
	}

	table := tablewriter.NewWriter(r.w)
	table.Header("Item", "Weight", "Value", "Adjusted Value", "Fragile")
	for _, item := range items {
		row := []string{
			item.Name,
			strconv.Itoa(item.Weight),
			formatValue(item.RawValue),
			formatValue(item.AdjustedValue),
			strconv.FormatBool(item.Fragile),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

package report

import (
	"context"
	"io"

	"github.com/eugenenazirov/knapsack-allocator/internal/allocator"
)

// Reporter formats and writes an allocation result to an output destination.
type Reporter interface {
	Report(ctx context.Context, res allocator.Result) error
}

// NewReporter creates a reporter for the given format writing to w.
func NewReporter(format string, w io.Writer) Reporter {
	switch format {
	case "json":
		return &JSONReporter{w: w}
	default:
		return &TableReporter{w: w}
	}
}

// Formats lists the supported output formats.
func Formats() []string {
	return []string{"table", "json"}
}

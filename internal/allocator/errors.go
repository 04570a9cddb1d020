package allocator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidItem is returned when an item has a non-positive weight, a negative value or an invalid dynamic factor.
	ErrInvalidItem = errors.New("invalid item")
	// ErrInvalidContainer is returned when a container has a non-positive capacity.
	ErrInvalidContainer = errors.New("invalid container")
	// ErrDuplicateName is returned when two items share a name.
	ErrDuplicateName = errors.New("duplicate item name")
	// ErrUnknownStrategy is returned for a strategy selector other than greedy or exact.
	ErrUnknownStrategy = errors.New("unknown allocation strategy")
	// ErrCapacityTooLarge is returned when a container exceeds the configured capacity
	// limit, or when the exact strategy's table for it would exceed the cell limit.
	ErrCapacityTooLarge = errors.New("container capacity exceeds the configured limit")
)

// InvalidItemError identifies the offending item and field.
type InvalidItemError struct {
	Index  int
	Name   string
	Field  string
	Reason string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("item %d (%q): %s %s", e.Index, e.Name, e.Field, e.Reason)
}

func (e *InvalidItemError) Unwrap() error { return ErrInvalidItem }

// InvalidContainerError identifies the offending container and field.
type InvalidContainerError struct {
	Index  int
	Name   string
	Field  string
	Reason string
}

func (e *InvalidContainerError) Error() string {
	return fmt.Sprintf("container %d (%q): %s %s", e.Index, e.Name, e.Field, e.Reason)
}

func (e *InvalidContainerError) Unwrap() error { return ErrInvalidContainer }

// DuplicateNameError reports the positions of two items sharing a name.
type DuplicateNameError struct {
	Name   string
	First  int
	Second int
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("items %d and %d share the name %q", e.First, e.Second, e.Name)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// TableTooLargeError reports a container whose exact-strategy table would exceed
// the configured number of cells.
type TableTooLargeError struct {
	Index    int
	Name     string
	Items    int
	Capacity int
	Cells    int
	Limit    int
}

func (e *TableTooLargeError) Error() string {
	return fmt.Sprintf("container %d (%q): %d items x capacity %d needs %d table cells, limit %d",
		e.Index, e.Name, e.Items, e.Capacity, e.Cells, e.Limit)
}

func (e *TableTooLargeError) Unwrap() error { return ErrCapacityTooLarge }

// Package dataset reads allocation input (items, containers and an optional
// strategy) from YAML or JSON documents.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/knapsack-allocator/internal/allocator"
)

// ErrEmptyDataset is returned when a document declares no containers.
var ErrEmptyDataset = errors.New("dataset must declare at least one container")

// Dataset is one allocation problem.
type Dataset struct {
	Strategy   string                   `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	Items      []allocator.RawItem      `yaml:"items" json:"items"`
	Containers []allocator.RawContainer `yaml:"containers" json:"containers"`
}

// Load reads a dataset file. JSON is accepted as well since it is valid YAML.
func Load(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset: %w", err)
	}
	ds, err := Parse(data)
	if err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes a dataset document, rejecting unknown fields.
func Parse(data []byte) (Dataset, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return Dataset{}, ErrEmptyDataset
		}
		return Dataset{}, fmt.Errorf("parse dataset: %w", err)
	}
	if len(ds.Containers) == 0 {
		return Dataset{}, ErrEmptyDataset
	}
	return ds, nil
}

// Sample returns the classic four-item, two-knapsack problem.
func Sample() Dataset {
	return Dataset{
		Items: []allocator.RawItem{
			{Name: "Item 1", Weight: 3, Value: 8, Fragile: true, DynamicFactor: 0.7},
			{Name: "Item 2", Weight: 4, Value: 10, Fragile: false, DynamicFactor: 1.0},
			{Name: "Item 3", Weight: 2, Value: 5, Fragile: false, DynamicFactor: 0.9},
			{Name: "Item 4", Weight: 5, Value: 12, Fragile: true, DynamicFactor: 0.6},
		},
		Containers: []allocator.RawContainer{
			{Name: "Knapsack 1", Capacity: 10},
			{Name: "Knapsack 2", Capacity: 8},
		},
	}
}

package allocator

import "math"

// AdjustValues validates raw items and returns working copies with the fragile
// discount applied. The input slice is left untouched.
func AdjustValues(raw []RawItem) ([]Item, error) {
	items := make([]Item, 0, len(raw))
	seen := make(map[string]int, len(raw))

	for i, r := range raw {
		if err := validateItem(i, r); err != nil {
			return nil, err
		}
		if first, ok := seen[r.Name]; ok {
			return nil, &DuplicateNameError{Name: r.Name, First: first, Second: i}
		}
		seen[r.Name] = i

		items = append(items, adjust(r))
	}

	return items, nil
}

func adjust(r RawItem) Item {
	item := Item{
		Name:          r.Name,
		Weight:        r.Weight,
		RawValue:      r.Value,
		AdjustedValue: r.Value,
		Fragile:       r.Fragile,
	}
	if r.Fragile {
		item.DynamicFactor = r.DynamicFactor
		item.AdjustedValue = r.Value * r.DynamicFactor
	}
	return item
}

func validateItem(i int, r RawItem) error {
	invalid := func(field, reason string) error {
		return &InvalidItemError{Index: i, Name: r.Name, Field: field, Reason: reason}
	}

	switch {
	case r.Name == "":
		return invalid("name", "must not be empty")
	case r.Weight <= 0:
		return invalid("weight", "must be a positive integer")
	case math.IsNaN(r.Value) || math.IsInf(r.Value, 0):
		return invalid("value", "must be a finite number")
	case r.Value < 0:
		return invalid("value", "must not be negative")
	}

	// The factor only matters for fragile items.
	if r.Fragile {
		switch {
		case math.IsNaN(r.DynamicFactor):
			return invalid("dynamic_factor", "must be a number")
		case r.DynamicFactor <= 0 || r.DynamicFactor > 1:
			return invalid("dynamic_factor", "must be in (0, 1] for fragile items")
		}
	}

	return nil
}

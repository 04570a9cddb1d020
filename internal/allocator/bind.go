package allocator

import "fmt"

// BindContainers turns raw container descriptors into empty allocation state.
func BindContainers(raw []RawContainer) ([]Container, error) {
	containers := make([]Container, 0, len(raw))
	for i, r := range raw {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("container-%d", i+1)
		}
		if r.Capacity <= 0 {
			return nil, &InvalidContainerError{Index: i, Name: name, Field: "capacity", Reason: "must be a positive integer"}
		}
		containers = append(containers, Container{
			Name:     name,
			Capacity: r.Capacity,
			Items:    []Item{},
		})
	}
	return containers, nil
}

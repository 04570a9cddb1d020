package allocator

// RawItem is an item as supplied by the caller, before any value adjustment.
type RawItem struct {
	Name          string  `json:"name" yaml:"name"`
	Weight        int     `json:"weight" yaml:"weight"`
	Value         float64 `json:"value" yaml:"value"`
	Fragile       bool    `json:"fragile" yaml:"fragile"`
	DynamicFactor float64 `json:"dynamic_factor" yaml:"dynamic_factor"`
}

// RawContainer describes a knapsack before it is bound to allocation state.
type RawContainer struct {
	Name     string `json:"name" yaml:"name"`
	Capacity int    `json:"capacity" yaml:"capacity"`
}

// Item is the working copy of a RawItem with its adjusted value computed.
// Items are never modified after AdjustValues produces them.
type Item struct {
	Name          string  `json:"name"`
	Weight        int     `json:"weight"`
	RawValue      float64 `json:"raw_value"`
	AdjustedValue float64 `json:"adjusted_value"`
	Fragile       bool    `json:"fragile"`
	DynamicFactor float64 `json:"dynamic_factor,omitempty"`
}

// Container is the mutable allocation state of a knapsack.
// Invariant: CurrentLoad equals the summed weight of Items and never exceeds Capacity.
type Container struct {
	Name        string  `json:"name"`
	Capacity    int     `json:"capacity"`
	CurrentLoad int     `json:"total_weight"`
	Items       []Item  `json:"items"`
	TotalValue  float64 `json:"total_value"`
}

// Remaining returns the unused capacity.
func (c *Container) Remaining() int {
	return c.Capacity - c.CurrentLoad
}

func (c *Container) fits(item Item) bool {
	return item.Weight+c.CurrentLoad <= c.Capacity
}

func (c *Container) add(item Item) {
	c.CurrentLoad += item.Weight
	c.Items = append(c.Items, item)
}

// recompute derives CurrentLoad and TotalValue from Items.
func (c *Container) recompute() {
	load := 0
	value := 0.0
	for _, item := range c.Items {
		load += item.Weight
		value += item.AdjustedValue
	}
	c.CurrentLoad = load
	c.TotalValue = value
}

func (c Container) clone() Container {
	out := c
	out.Items = append([]Item{}, c.Items...)
	return out
}

// Result is the outcome of one allocation run. The allocator hands back both
// the filled containers, in input order, and whatever remained in the pool.
type Result struct {
	Strategy   Strategy    `json:"strategy"`
	Containers []Container `json:"containers"`
	Leftover   []Item      `json:"leftover"`
}

// TotalWeight sums the load of every container.
func (r Result) TotalWeight() int {
	total := 0
	for i := range r.Containers {
		total += r.Containers[i].CurrentLoad
	}
	return total
}

// TotalValue sums the captured value of every container.
func (r Result) TotalValue() float64 {
	total := 0.0
	for i := range r.Containers {
		total += r.Containers[i].TotalValue
	}
	return total
}

// AssignedCount returns how many items were committed to a container.
func (r Result) AssignedCount() int {
	n := 0
	for i := range r.Containers {
		n += len(r.Containers[i].Items)
	}
	return n
}

// Allocator distributes items across containers. Implementations take ownership
// of the slices passed in for the duration of the call and never return an error:
// inputs are validated before an Allocator sees them.
type Allocator interface {
	Allocate(items []Item, containers []Container) Result
	Strategy() Strategy
}

// Solver validates raw input and runs the selected strategy end to end.
type Solver interface {
	Solve(items []RawItem, containers []RawContainer, strategy Strategy) (Result, error)
}

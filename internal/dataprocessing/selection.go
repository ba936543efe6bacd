package dataprocessing

import (
	"slices"

	"productpulse/pkg/contracts/domain"
)

// SelectionState is the dashboard's view state: the chosen products and
// periods plus the chart series a user has hidden. It is a value; Reduce
// never mutates its input.
type SelectionState struct {
	Products []string        `json:"products"`
	Periods  []int           `json:"days"`
	Hidden   map[string]bool `json:"hidden,omitempty"`
}

// SelectionEvent is a user action applied by Reduce
type SelectionEvent interface {
	selectionEvent()
}

type (
	// SelectProduct appends a product if not already selected.
	SelectProduct struct{ Name string }
	// DeselectProduct removes a product.
	DeselectProduct struct{ Name string }
	// ToggleProduct selects or deselects a product.
	ToggleProduct struct{ Name string }
	// SetPeriods replaces the selected periods.
	SetPeriods struct{ Periods []int }
	// ToggleSeries hides or shows one namespaced chart series.
	ToggleSeries struct{ Key string }
	// Reset restores the given initial state.
	Reset struct{ To SelectionState }
)

func (SelectProduct) selectionEvent()   {}
func (DeselectProduct) selectionEvent() {}
func (ToggleProduct) selectionEvent()   {}
func (SetPeriods) selectionEvent()      {}
func (ToggleSeries) selectionEvent()    {}
func (Reset) selectionEvent()           {}

// NewSelectionState selects every period of the dataset and no products
func NewSelectionState(ds domain.Dataset) SelectionState {
	return SelectionState{Products: []string{}, Periods: UniquePeriods(ds), Hidden: map[string]bool{}}
}

// Reduce applies an event and returns the next state
func Reduce(s SelectionState, ev SelectionEvent) SelectionState {
	next := s.clone()
	switch e := ev.(type) {
	case SelectProduct:
		if !slices.Contains(next.Products, e.Name) {
			next.Products = append(next.Products, e.Name)
		}
	case DeselectProduct:
		next.Products = slices.DeleteFunc(next.Products, func(n string) bool { return n == e.Name })
		for _, m := range domain.Metrics {
			delete(next.Hidden, domain.SeriesKey(e.Name, m))
		}
	case ToggleProduct:
		if slices.Contains(next.Products, e.Name) {
			return Reduce(s, DeselectProduct{Name: e.Name})
		}
		return Reduce(s, SelectProduct{Name: e.Name})
	case SetPeriods:
		periods := slices.Clone(e.Periods)
		slices.Sort(periods)
		next.Periods = slices.Compact(periods)
		if next.Periods == nil {
			next.Periods = []int{}
		}
	case ToggleSeries:
		if next.Hidden[e.Key] {
			delete(next.Hidden, e.Key)
		} else {
			next.Hidden[e.Key] = true
		}
	case Reset:
		return e.To.clone()
	}
	return next
}

// Selection converts the state into the query selection
func (s SelectionState) Selection() domain.Selection {
	return domain.Selection{Products: slices.Clone(s.Products), Periods: slices.Clone(s.Periods)}
}

// VisibleSeries lists the namespaced series keys of the selected products that
// are not hidden, product by product in metric order.
func (s SelectionState) VisibleSeries() []string {
	out := make([]string, 0, len(s.Products)*len(domain.Metrics))
	for _, name := range s.Products {
		for _, m := range domain.Metrics {
			key := domain.SeriesKey(name, m)
			if !s.Hidden[key] {
				out = append(out, key)
			}
		}
	}
	return out
}

func (s SelectionState) clone() SelectionState {
	c := SelectionState{
		Products: slices.Clone(s.Products),
		Periods:  slices.Clone(s.Periods),
		Hidden:   make(map[string]bool, len(s.Hidden)),
	}
	if c.Products == nil {
		c.Products = []string{}
	}
	if c.Periods == nil {
		c.Periods = []int{}
	}
	for k, v := range s.Hidden {
		c.Hidden[k] = v
	}
	return c
}

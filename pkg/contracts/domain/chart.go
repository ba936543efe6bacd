package domain

import (
	"encoding/json"
	"fmt"
)

// Metric keys used by chart rows
const (
	MetricInventory         = "inventory"
	MetricProcurementAmount = "procurementAmount"
	MetricSalesAmount       = "salesAmount"
)

// Metrics lists the chart metric keys in series order
var Metrics = []string{MetricInventory, MetricProcurementAmount, MetricSalesAmount}

// ChartLayout tells which row variant a matrix carries
type ChartLayout string

const (
	ChartLayoutEmpty  ChartLayout = "empty"
	ChartLayoutSingle ChartLayout = "single"
	ChartLayoutMulti  ChartLayout = "multi"
)

// PeriodMetrics holds the three charted values of one product in one period
type PeriodMetrics struct {
	Inventory         float64 `json:"inventory"`
	ProcurementAmount float64 `json:"procurementAmount"`
	SalesAmount       float64 `json:"salesAmount"`
}

// MetricsOf extracts the charted values from an observation
func MetricsOf(o Observation) PeriodMetrics {
	return PeriodMetrics{
		Inventory:         o.Inventory,
		ProcurementAmount: o.ProcurementAmount,
		SalesAmount:       o.SalesAmount,
	}
}

// ChartRow is one period of a chart matrix. It is either a SingleProductRow or
// a MultiProductRow.
type ChartRow interface {
	Day() int
	// Flatten returns the keyed form consumed by charting libraries.
	Flatten() map[string]any
	chartRow()
}

// SingleProductRow carries bare metric values when one product is selected
type SingleProductRow struct {
	Period  int
	Metrics PeriodMetrics
}

// Day implements ChartRow
func (r SingleProductRow) Day() int { return r.Period }

// Flatten implements ChartRow
func (r SingleProductRow) Flatten() map[string]any {
	return map[string]any{
		"day":                   DayLabel(r.Period),
		MetricInventory:         r.Metrics.Inventory,
		MetricProcurementAmount: r.Metrics.ProcurementAmount,
		MetricSalesAmount:       r.Metrics.SalesAmount,
	}
}

func (SingleProductRow) chartRow() {}

// MultiProductRow carries per-product values when several products are
// selected. Products without an observation in the period are absent.
type MultiProductRow struct {
	Period     int
	PerProduct map[string]PeriodMetrics
}

// Day implements ChartRow
func (r MultiProductRow) Day() int { return r.Period }

// Flatten implements ChartRow
func (r MultiProductRow) Flatten() map[string]any {
	out := make(map[string]any, 1+3*len(r.PerProduct))
	out["day"] = DayLabel(r.Period)
	for name, m := range r.PerProduct {
		out[SeriesKey(name, MetricInventory)] = m.Inventory
		out[SeriesKey(name, MetricProcurementAmount)] = m.ProcurementAmount
		out[SeriesKey(name, MetricSalesAmount)] = m.SalesAmount
	}
	return out
}

func (MultiProductRow) chartRow() {}

// ChartMatrix is the period-indexed table driving multi-series charts.
// Rows are ordered by ascending period.
type ChartMatrix struct {
	Layout   ChartLayout
	Products []string
	Rows     []ChartRow
}

// Flatten converts every row to its keyed form
func (m ChartMatrix) Flatten() []map[string]any {
	out := make([]map[string]any, 0, len(m.Rows))
	for _, row := range m.Rows {
		out = append(out, row.Flatten())
	}
	return out
}

// MarshalJSON emits the flattened rows with the layout and product order
func (m ChartMatrix) MarshalJSON() ([]byte, error) {
	layout := m.Layout
	if layout == "" {
		layout = ChartLayoutEmpty
	}
	products := m.Products
	if products == nil {
		products = []string{}
	}
	return json.Marshal(struct {
		Layout   ChartLayout      `json:"layout"`
		Products []string         `json:"products"`
		Rows     []map[string]any `json:"rows"`
	}{layout, products, m.Flatten()})
}

// SeriesKey builds the namespaced key of a product metric
func SeriesKey(productName, metric string) string {
	return productName + "_" + metric
}

// DayLabel renders a period index the way chart axes show it
func DayLabel(period int) string {
	return fmt.Sprintf("Day %d", period)
}

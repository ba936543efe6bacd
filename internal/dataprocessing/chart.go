package dataprocessing

import (
	"slices"

	"productpulse/pkg/contracts/domain"
)

// BuildChartMatrix pivots the selected observations into one row per period.
// A single selected product produces bare metric rows; several products
// produce per-product rows in which missing products are simply absent.
func BuildChartMatrix(ds domain.Dataset, productNames []string, periods []int) domain.ChartMatrix {
	products := distinct(productNames)
	if len(products) == 0 {
		return domain.ChartMatrix{Layout: domain.ChartLayoutEmpty, Products: []string{}, Rows: []domain.ChartRow{}}
	}

	byPeriod := make(map[int][]domain.Observation)
	for _, o := range Filter(ds, products, periods) {
		byPeriod[o.Period] = append(byPeriod[o.Period], o)
	}
	days := make([]int, 0, len(byPeriod))
	for d := range byPeriod {
		days = append(days, d)
	}
	slices.Sort(days)

	m := domain.ChartMatrix{
		Layout:   domain.ChartLayoutMulti,
		Products: products,
		Rows:     make([]domain.ChartRow, 0, len(days)),
	}
	if len(products) == 1 {
		m.Layout = domain.ChartLayoutSingle
	}

	for _, day := range days {
		group := byPeriod[day]
		if m.Layout == domain.ChartLayoutSingle {
			// duplicate product names: the later record wins
			last := group[len(group)-1]
			m.Rows = append(m.Rows, domain.SingleProductRow{Period: day, Metrics: domain.MetricsOf(last)})
			continue
		}
		row := domain.MultiProductRow{Period: day, PerProduct: make(map[string]domain.PeriodMetrics, len(group))}
		for _, o := range group {
			row.PerProduct[o.ProductName] = domain.MetricsOf(o)
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

func distinct(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

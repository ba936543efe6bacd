package dataprocessing

import (
	"slices"
	"strings"

	"productpulse/pkg/contracts/domain"
)

// Filter keeps the observations whose product is in productNames and whose
// period is in periods. An empty product or period set selects nothing.
func Filter(ds domain.Dataset, productNames []string, periods []int) domain.Dataset {
	out := domain.Dataset{}
	if len(productNames) == 0 || len(periods) == 0 {
		return out
	}

	names := make(map[string]struct{}, len(productNames))
	for _, n := range productNames {
		names[n] = struct{}{}
	}
	days := make(map[int]struct{}, len(periods))
	for _, p := range periods {
		days[p] = struct{}{}
	}

	for _, o := range ds {
		if _, ok := names[o.ProductName]; !ok {
			continue
		}
		if _, ok := days[o.Period]; !ok {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Aggregate sums and averages a subset. Averages of an empty subset are 0.
func Aggregate(subset domain.Dataset) domain.Summary {
	var s domain.Summary
	for _, o := range subset {
		s.TotalProcurement += o.ProcurementAmount
		s.TotalSales += o.SalesAmount
		s.TotalInventory += o.Inventory
	}
	s.Count = len(subset)
	if s.Count > 0 {
		s.AvgProcurement = s.TotalProcurement / float64(s.Count)
		s.AvgSales = s.TotalSales / float64(s.Count)
	}
	s.NetRevenue = s.TotalSales - s.TotalProcurement
	return s
}

// UniqueProducts lists product names in first-seen order
func UniqueProducts(ds domain.Dataset) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, o := range ds {
		if _, ok := seen[o.ProductName]; ok {
			continue
		}
		seen[o.ProductName] = struct{}{}
		out = append(out, o.ProductName)
	}
	return out
}

// UniquePeriods lists the distinct periods in ascending order
func UniquePeriods(ds domain.Dataset) []int {
	seen := make(map[int]struct{})
	out := []int{}
	for _, o := range ds {
		if _, ok := seen[o.Period]; ok {
			continue
		}
		seen[o.Period] = struct{}{}
		out = append(out, o.Period)
	}
	slices.Sort(out)
	return out
}

// ProductSummaries builds one summary card per requested product, in the
// order requested. Products without observations get zero figures.
func ProductSummaries(subset domain.Dataset, productNames []string) []domain.ProductSummary {
	index := make(map[string]int, len(productNames))
	out := make([]domain.ProductSummary, 0, len(productNames))
	for _, name := range productNames {
		if _, dup := index[name]; dup {
			continue
		}
		index[name] = len(out)
		out = append(out, domain.ProductSummary{ProductName: name})
	}

	inventory := make([]float64, len(out))
	for _, o := range subset {
		i, ok := index[o.ProductName]
		if !ok {
			continue
		}
		out[i].TotalSales += o.SalesAmount
		out[i].TotalProcurement += o.ProcurementAmount
		out[i].Periods++
		inventory[i] += o.Inventory
	}
	for i := range out {
		if out[i].Periods > 0 {
			out[i].AvgInventory = inventory[i] / float64(out[i].Periods)
		}
	}
	return out
}

// SearchProducts returns the names containing term, ignoring case
func SearchProducts(names []string, term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if term == "" || strings.Contains(strings.ToLower(n), term) {
			out = append(out, n)
		}
	}
	return out
}

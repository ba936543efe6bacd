package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productpulse/pkg/contracts/domain"
)

func sampleDataset() domain.Dataset {
	gadget := sampleRecord()
	gadget.ID = "P2"
	gadget.ProductName = "Gadget"
	gadget.OpeningInventory = 50

	gizmo := domain.RawRecord{
		ID:               "P3",
		ProductName:      "Gizmo",
		OpeningInventory: 10,
		Periods:          []domain.RawPeriod{{SalesQty: 1, SalesPrice: "$10"}},
	}
	return Normalize([]domain.RawRecord{sampleRecord(), gadget, gizmo})
}

func TestFilter(t *testing.T) {
	ds := sampleDataset()

	subset := Filter(ds, []string{"Widget"}, []int{1, 3})
	require.Len(t, subset, 2)
	assert.Equal(t, 1, subset[0].Period)
	assert.Equal(t, 3, subset[1].Period)

	all := Filter(ds, []string{"Widget", "Gadget", "Gizmo"}, []int{1, 2, 3})
	assert.Len(t, all, len(ds))
	for _, o := range all {
		assert.Contains(t, ds, o, "filter only returns observations from the dataset")
	}

	assert.Empty(t, Filter(ds, nil, []int{1}))
	assert.Empty(t, Filter(ds, []string{"Widget"}, []int{}))
	assert.Empty(t, Filter(ds, []string{"Unknown"}, []int{1, 2, 3}))
	assert.NotNil(t, Filter(ds, nil, nil))
}

func TestAggregate(t *testing.T) {
	subset := Filter(sampleDataset(), []string{"Widget"}, []int{1, 2, 3})
	s := Aggregate(subset)

	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 57.5, s.TotalProcurement, 1e-9)
	assert.InDelta(t, 125, s.TotalSales, 1e-9)
	assert.InDelta(t, 280, s.TotalInventory, 1e-9)
	assert.InDelta(t, 57.5/3, s.AvgProcurement, 1e-9)
	assert.InDelta(t, 125.0/3, s.AvgSales, 1e-9)
	assert.InDelta(t, 67.5, s.NetRevenue, 1e-9)
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(domain.Dataset{})
	assert.Zero(t, s.AvgProcurement)
	assert.Zero(t, s.AvgSales)
	assert.Zero(t, s.NetRevenue)
	assert.Zero(t, s.Count)
}

func TestUniqueProducts(t *testing.T) {
	assert.Equal(t, []string{"Widget", "Gadget", "Gizmo"}, UniqueProducts(sampleDataset()))
	assert.Equal(t, []string{}, UniqueProducts(nil))
}

func TestUniquePeriods(t *testing.T) {
	ds := domain.Dataset{{Period: 3}, {Period: 1}, {Period: 3}, {Period: 2}}
	assert.Equal(t, []int{1, 2, 3}, UniquePeriods(ds))
	assert.Equal(t, []int{}, UniquePeriods(nil))
}

func TestProductSummaries(t *testing.T) {
	ds := sampleDataset()
	subset := Filter(ds, []string{"Gadget", "Widget"}, []int{1, 2, 3})

	cards := ProductSummaries(subset, []string{"Gadget", "Widget", "Gadget", "Missing"})
	require.Len(t, cards, 3)

	assert.Equal(t, "Gadget", cards[0].ProductName)
	assert.InDelta(t, 125, cards[0].TotalSales, 1e-9)
	assert.InDelta(t, 57.5, cards[0].TotalProcurement, 1e-9)
	assert.InDelta(t, 130.0/3, cards[0].AvgInventory, 1e-9)
	assert.Equal(t, 3, cards[0].Periods)

	assert.Equal(t, "Widget", cards[1].ProductName)
	assert.InDelta(t, 280.0/3, cards[1].AvgInventory, 1e-9)

	assert.Equal(t, domain.ProductSummary{ProductName: "Missing"}, cards[2])
}

func TestSearchProducts(t *testing.T) {
	names := []string{"Widget", "Gadget", "Gizmo"}

	assert.Equal(t, []string{"Widget", "Gadget"}, SearchProducts(names, "DGE"))
	assert.Equal(t, []string{"Gizmo"}, SearchProducts(names, " giz "))
	assert.Equal(t, names, SearchProducts(names, ""))
	assert.Empty(t, SearchProducts(names, "sprocket"))
}

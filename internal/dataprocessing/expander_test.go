package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productpulse/pkg/contracts/domain"
)

func sampleRecord() domain.RawRecord {
	return domain.RawRecord{
		ID:               "P1",
		ProductName:      "Widget",
		OpeningInventory: 100,
		Periods: []domain.RawPeriod{
			{ProcurementQty: 10, ProcurementPrice: "$2.00", SalesQty: 5, SalesPrice: "$3.00"},
			{ProcurementQty: 0, ProcurementPrice: "$0", SalesQty: 20, SalesPrice: "$3.50"},
			{ProcurementQty: 15, ProcurementPrice: "$2.50", SalesQty: 10, SalesPrice: "$4.00"},
		},
	}
}

func TestExpandRecordEndToEnd(t *testing.T) {
	obs := ExpandRecord(sampleRecord())
	require.Len(t, obs, 3)

	want := []struct {
		inventory, procurement, sales float64
	}{
		{105, 20, 15},
		{85, 0, 70},
		{90, 37.5, 40},
	}
	for i, w := range want {
		o := obs[i]
		assert.Equal(t, "P1", o.ProductID)
		assert.Equal(t, "Widget", o.ProductName)
		assert.Equal(t, i+1, o.Period)
		assert.InDelta(t, w.inventory, o.Inventory, 1e-9, "period %d inventory", i+1)
		assert.InDelta(t, w.procurement, o.ProcurementAmount, 1e-9, "period %d procurement", i+1)
		assert.InDelta(t, w.sales, o.SalesAmount, 1e-9, "period %d sales", i+1)
	}
}

func TestExpandRecordInventoryRecurrence(t *testing.T) {
	rec := domain.RawRecord{
		ID:               "R",
		ProductName:      "Recurrence",
		OpeningInventory: 12.5,
		Periods: []domain.RawPeriod{
			{ProcurementQty: 3, SalesQty: 7},
			{ProcurementQty: 40, SalesQty: 1},
			{ProcurementQty: 0, SalesQty: 0},
			{ProcurementQty: 2.5, SalesQty: 30},
		},
	}

	obs := ExpandRecord(rec)
	require.Len(t, obs, len(rec.Periods))

	var procSum, salesSum float64
	for p, o := range obs {
		procSum += rec.Periods[p].ProcurementQty
		salesSum += rec.Periods[p].SalesQty
		assert.Equal(t, p+1, o.Period, "periods are contiguous from 1")
		assert.InDelta(t, rec.OpeningInventory+procSum-salesSum, o.Inventory, 1e-9)
	}
}

func TestExpandRecordZeroQuantityMeansZeroAmount(t *testing.T) {
	rec := domain.RawRecord{
		ProductName: "Free",
		Periods: []domain.RawPeriod{
			{ProcurementQty: 0, ProcurementPrice: "$999.00", SalesQty: 0, SalesPrice: "$5"},
			{ProcurementQty: 0, ProcurementPrice: "garbage", SalesQty: 0, SalesPrice: nil},
		},
	}
	for _, o := range ExpandRecord(rec) {
		assert.Zero(t, o.ProcurementAmount)
		assert.Zero(t, o.SalesAmount)
	}
}

func TestExpandRecordMalformedPriceIsZero(t *testing.T) {
	rec := domain.RawRecord{
		ProductName: "Odd",
		Periods:     []domain.RawPeriod{{ProcurementQty: 4, ProcurementPrice: "TBD", SalesQty: 2, SalesPrice: 6}},
	}
	obs := ExpandRecord(rec)
	require.Len(t, obs, 1)
	assert.Zero(t, obs[0].ProcurementAmount)
	assert.Equal(t, 12.0, obs[0].SalesAmount)
	assert.Equal(t, 2.0, obs[0].Inventory)
}

func TestNormalizePreservesOrder(t *testing.T) {
	second := sampleRecord()
	second.ID = "P2"
	second.ProductName = "Gadget"

	ds := Normalize([]domain.RawRecord{sampleRecord(), second})
	require.Len(t, ds, 6)

	for i, o := range ds {
		if i < 3 {
			assert.Equal(t, "Widget", o.ProductName)
		} else {
			assert.Equal(t, "Gadget", o.ProductName)
		}
		assert.Equal(t, i%3+1, o.Period)
	}

	assert.Equal(t, ds, Normalize([]domain.RawRecord{sampleRecord(), second}), "normalizing is deterministic")
}

func TestNormalizeEmpty(t *testing.T) {
	ds := Normalize(nil)
	assert.NotNil(t, ds)
	assert.Empty(t, ds)
}

func TestNormalizeWithDiagnostics(t *testing.T) {
	res := &DecodeResult{
		Records:     []domain.RawRecord{sampleRecord()},
		Diagnostics: []domain.Diagnostic{{Row: 2, Column: "Sales Price (Day 1)", Value: "x", Reason: "bad"}},
	}

	nd := NormalizeWithDiagnostics(res, "upload.xlsx")
	assert.Len(t, nd.Dataset, 3)
	assert.Len(t, nd.Diagnostics, 1)
	assert.Equal(t, "upload.xlsx", nd.Source)
	assert.False(t, nd.UploadedAt.IsZero())

	empty := NormalizeWithDiagnostics(nil, "none")
	assert.Empty(t, empty.Dataset)
	assert.NotNil(t, empty.Diagnostics)
}

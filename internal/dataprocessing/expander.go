package dataprocessing

import (
	"time"

	"productpulse/pkg/contracts/domain"
)

// ExpandRecord converts one wide-format record into one observation per
// period. Inventory is carried forward from the opening level, so periods are
// processed strictly in ascending order.
func ExpandRecord(rec domain.RawRecord) []domain.Observation {
	out := make([]domain.Observation, 0, len(rec.Periods))

	var cumulativeProcurement, cumulativeSales float64
	for i, p := range rec.Periods {
		cumulativeProcurement += p.ProcurementQty
		cumulativeSales += p.SalesQty

		out = append(out, domain.Observation{
			ProductID:         rec.ID,
			ProductName:       rec.ProductName,
			Period:            i + 1,
			Inventory:         rec.OpeningInventory + cumulativeProcurement - cumulativeSales,
			ProcurementAmount: amount(p.ProcurementQty, ParseCurrency(p.ProcurementPrice)),
			SalesAmount:       amount(p.SalesQty, ParseCurrency(p.SalesPrice)),
		})
	}
	return out
}

// Normalize expands every record in input order and concatenates the results.
func Normalize(records []domain.RawRecord) domain.Dataset {
	size := 0
	for _, rec := range records {
		size += len(rec.Periods)
	}

	ds := make(domain.Dataset, 0, size)
	for _, rec := range records {
		ds = append(ds, ExpandRecord(rec)...)
	}
	return ds
}

// NormalizeWithDiagnostics normalizes a decoded upload and keeps the
// substitutions made while decoding it.
func NormalizeWithDiagnostics(result *DecodeResult, source string) domain.NormalizedDataset {
	nd := domain.NormalizedDataset{
		Dataset:     domain.Dataset{},
		Diagnostics: []domain.Diagnostic{},
		Source:      source,
		UploadedAt:  time.Now().UTC(),
	}
	if result == nil {
		return nd
	}
	nd.Dataset = Normalize(result.Records)
	if result.Diagnostics != nil {
		nd.Diagnostics = result.Diagnostics
	}
	return nd
}

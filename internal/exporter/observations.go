package exporter

import (
	"io"
	"strconv"

	"productpulse/pkg/contracts/domain"
)

// ObservationHeaders are the columns of an observation export
var ObservationHeaders = []string{
	"product_id", "product_name", "day", "inventory", "procurement_amount", "sales_amount",
}

// SummaryHeaders are the columns of a product summary export
var SummaryHeaders = []string{
	"product_name", "days", "total_sales", "total_procurement", "avg_inventory",
}

// ObservationRow converts one observation to CSV fields
func ObservationRow(o domain.Observation) []string {
	return []string{
		o.ProductID,
		o.ProductName,
		strconv.Itoa(o.Period),
		formatQuantity(o.Inventory),
		formatAmount(o.ProcurementAmount),
		formatAmount(o.SalesAmount),
	}
}

// ExportObservations writes ds in dataset order
func ExportObservations(w io.Writer, ds domain.Dataset, options WriteOptions) error {
	options.Headers = ObservationHeaders
	cw, err := NewCSVWriter(w, options)
	if err != nil {
		return err
	}
	for _, o := range ds {
		if err := cw.WriteRecord(ObservationRow(o)); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// ExportProductSummaries writes one row per summary card with plain amounts
func ExportProductSummaries(w io.Writer, cards []domain.ProductSummary, options WriteOptions) error {
	options.Headers = SummaryHeaders
	records := make([][]string, 0, len(cards))
	for _, c := range cards {
		records = append(records, []string{
			c.ProductName,
			strconv.Itoa(c.Periods),
			formatAmount(c.TotalSales),
			formatAmount(c.TotalProcurement),
			formatAmount(c.AvgInventory),
		})
	}
	return WriteCSV(w, options, records)
}

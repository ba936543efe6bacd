package domain

import (
	"time"
)

// DefaultPeriodCount is the number of reporting days carried by an upload row.
const DefaultPeriodCount = 3

// RawPeriod holds one day of procurement and sales figures as read from a
// spreadsheet row. Prices are kept as decoded (number or currency string).
type RawPeriod struct {
	ProcurementQty   float64 `json:"procurement_qty"`
	ProcurementPrice any     `json:"procurement_price"`
	SalesQty         float64 `json:"sales_qty"`
	SalesPrice       any     `json:"sales_price"`
}

// RawRecord represents one wide-format spreadsheet row for a product
type RawRecord struct {
	ID               string      `json:"id"`
	ProductName      string      `json:"product_name" validate:"required"`
	OpeningInventory float64     `json:"opening_inventory" validate:"min=0"`
	Periods          []RawPeriod `json:"periods"`
}

// Observation is one product's derived metrics for one period
type Observation struct {
	ProductID         string  `json:"productId" db:"product_id"`
	ProductName       string  `json:"productName" db:"product_name"`
	Period            int     `json:"day" db:"period"`
	Inventory         float64 `json:"inventory" db:"inventory"`
	ProcurementAmount float64 `json:"procurementAmount" db:"procurement_amount"`
	SalesAmount       float64 `json:"salesAmount" db:"sales_amount"`
}

// Dataset is the ordered, normalized collection of observations for an upload.
// Observations of one product appear in ascending period order; products keep
// the order of the records they were expanded from.
type Dataset []Observation

// Diagnostic records a cell that was substituted with zero during decoding
type Diagnostic struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// NormalizedDataset carries a dataset with the diagnostics gathered while
// decoding its source rows.
type NormalizedDataset struct {
	Dataset     Dataset      `json:"dataset"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Source      string       `json:"source,omitempty"`
	UploadedAt  time.Time    `json:"uploaded_at"`
}

// Selection holds the product and period filter driving a view
type Selection struct {
	Products []string `json:"products"`
	Periods  []int    `json:"days"`
}

// Summary holds aggregate figures over a subset of observations
type Summary struct {
	TotalProcurement float64 `json:"totalProcurementAmount"`
	TotalSales       float64 `json:"totalSalesAmount"`
	TotalInventory   float64 `json:"totalInventory"`
	AvgProcurement   float64 `json:"avgProcurementAmount"`
	AvgSales         float64 `json:"avgSalesAmount"`
	NetRevenue       float64 `json:"netRevenue"`
	Count            int     `json:"count"`
}

// ProductSummary holds the per-product summary card figures
type ProductSummary struct {
	ProductName      string  `json:"productName"`
	TotalSales       float64 `json:"totalSales"`
	TotalProcurement float64 `json:"totalProcurement"`
	AvgInventory     float64 `json:"avgInventory"`
	Periods          int     `json:"days"`
}

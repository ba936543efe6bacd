package exporter

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"productpulse/pkg/contracts/domain"
)

// DefaultCurrency is used when no or an unknown currency code is given
const DefaultCurrency = money.USD

// formatAmount renders a value with exactly 2 decimal places, rounding half
// away from zero.
func formatAmount(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(2)
}

// formatQuantity renders a value with the shortest exact representation
func formatQuantity(f float64) string {
	return decimal.NewFromFloat(f).String()
}

// FormatCurrency renders amount with the symbol, grouping and minor units of
// the ISO 4217 currency code.
func FormatCurrency(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// FormattedSummary is a Summary with every amount rendered as currency
type FormattedSummary struct {
	TotalProcurement string `json:"totalProcurementAmount"`
	TotalSales       string `json:"totalSalesAmount"`
	TotalInventory   string `json:"totalInventory"`
	AvgProcurement   string `json:"avgProcurementAmount"`
	AvgSales         string `json:"avgSalesAmount"`
	NetRevenue       string `json:"netRevenue"`
	Count            int    `json:"count"`
}

// FormatSummary renders the amounts of s in currency
func FormatSummary(s domain.Summary, currency string) FormattedSummary {
	return FormattedSummary{
		TotalProcurement: FormatCurrency(s.TotalProcurement, currency),
		TotalSales:       FormatCurrency(s.TotalSales, currency),
		TotalInventory:   formatQuantity(s.TotalInventory),
		AvgProcurement:   FormatCurrency(s.AvgProcurement, currency),
		AvgSales:         FormatCurrency(s.AvgSales, currency),
		NetRevenue:       FormatCurrency(s.NetRevenue, currency),
		Count:            s.Count,
	}
}

// FormattedProductSummary is a summary card with rendered amounts
type FormattedProductSummary struct {
	ProductName      string `json:"productName"`
	TotalSales       string `json:"totalSales"`
	TotalProcurement string `json:"totalProcurement"`
	AvgInventory     string `json:"avgInventory"`
	Periods          int    `json:"days"`
}

// FormatProductSummaries renders every card in currency, keeping order
func FormatProductSummaries(cards []domain.ProductSummary, currency string) []FormattedProductSummary {
	out := make([]FormattedProductSummary, 0, len(cards))
	for _, c := range cards {
		out = append(out, FormattedProductSummary{
			ProductName:      c.ProductName,
			TotalSales:       FormatCurrency(c.TotalSales, currency),
			TotalProcurement: FormatCurrency(c.TotalProcurement, currency),
			AvgInventory:     decimal.NewFromFloat(c.AvgInventory).StringFixed(1),
			Periods:          c.Periods,
		})
	}
	return out
}

package dataprocessing

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyReplacer strips the dollar sign and thousands separators. No other
// locale convention is recognised.
var currencyReplacer = strings.NewReplacer("$", "", ",", "")

// ParseCurrency converts a spreadsheet value to a number. Numbers are returned
// unchanged; strings are cleaned of "$" and "," before parsing. Blank or
// unparsable input yields 0.
func ParseCurrency(v any) float64 {
	f, _ := ParseCurrencyStrict(v)
	return f
}

// ParseCurrencyStrict behaves like ParseCurrency but reports whether the value
// could be interpreted. Blank and nil values count as interpretable zeros.
// Values outside the float64 range, infinities and NaN are not interpretable.
func ParseCurrencyStrict(v any) (float64, bool) {
	f, ok := parseNumber(v)
	if !ok || !isFinite(f) {
		return 0, false
	}
	return f, true
}

func parseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case decimal.Decimal:
		return n.InexactFloat64(), true
	case json.Number:
		return parseCurrencyString(n.String())
	case string:
		return parseCurrencyString(n)
	default:
		return 0, false
	}
}

func parseCurrencyString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	d, err := decimal.NewFromString(currencyReplacer.Replace(s))
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// amount multiplies a quantity by a unit price without binary rounding drift.
// A product that leaves the float64 range is 0, like any other unusable cell.
func amount(qty, unitPrice float64) float64 {
	if qty == 0 || !isFinite(qty) || !isFinite(unitPrice) {
		return 0
	}
	a := decimal.NewFromFloat(qty).Mul(decimal.NewFromFloat(unitPrice)).InexactFloat64()
	if !isFinite(a) {
		return 0
	}
	return a
}

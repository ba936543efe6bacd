package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"productpulse/pkg/contracts/domain"
)

// Column headers of the inventory workbook
const (
	ColumnID               = "ID"
	ColumnProductName      = "Product Name"
	ColumnOpeningInventory = "Opening Inventory"
)

// headerScanDepth bounds how many leading rows are searched for the header row
const headerScanDepth = 10

var (
	// ErrHeaderNotFound is returned when no sheet has a "Product Name" header.
	ErrHeaderNotFound = errors.New("no sheet with a Product Name header found")
	// ErrEmptyWorkbook is returned for workbooks without sheets or rows.
	ErrEmptyWorkbook = errors.New("workbook contains no rows")
)

// periodColumn matches headers such as "Sales Price (Day 2)"
var periodColumn = regexp.MustCompile(`(?i)^\s*(procurement|sales)\s+(qty|price)\s*\(\s*day\s+(\d+)\s*\)\s*$`)

// DecodeResult holds the wide-format records read from a workbook and the
// value substitutions made while reading them.
type DecodeResult struct {
	Sheet       string
	Records     []domain.RawRecord
	Diagnostics []domain.Diagnostic
}

type periodField int

const (
	procurementQty periodField = iota
	procurementPrice
	salesQty
	salesPrice
)

type columnMap struct {
	id, name, opening int
	periods           map[int]map[periodField]int
	headers           []string
	periodCount       int
}

// Decoder reads inventory workbooks
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder creates a decoder. A nil logger falls back to slog.Default.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger}
}

// Decode opens an .xlsx stream and decodes the first sheet carrying the
// inventory header row.
func (d *Decoder) Decode(ctx context.Context, r io.Reader) (*DecodeResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	for _, name := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			d.logger.WarnContext(ctx, "Skipping unreadable sheet",
				slog.String("sheet_name", name),
				slog.String("error", err.Error()))
			continue
		}
		if findHeader(rows) < 0 {
			continue
		}
		d.logger.InfoContext(ctx, "Found inventory data in sheet",
			slog.String("sheet_name", name),
			slog.Int("total_rows", len(rows)))
		res, err := d.DecodeRows(ctx, rows)
		if err != nil {
			return nil, err
		}
		res.Sheet = name
		return res, nil
	}
	return nil, ErrHeaderNotFound
}

// DecodeRows decodes a grid of cell strings whose header row sits within
// the first few rows. It is shared by the workbook and Google Sheets paths.
func (d *Decoder) DecodeRows(ctx context.Context, rows [][]string) (*DecodeResult, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}
	headerIdx := findHeader(rows)
	if headerIdx < 0 {
		return nil, ErrHeaderNotFound
	}
	cols := mapColumns(rows[headerIdx])

	res := &DecodeResult{
		Records:     []domain.RawRecord{},
		Diagnostics: []domain.Diagnostic{},
	}
	for i := headerIdx + 1; i < len(rows); i++ {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := rows[i]
		if blankRow(row) {
			continue
		}
		rowNum := i + 1

		name := strings.TrimSpace(cell(row, cols.name))
		if name == "" {
			res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
				Row: rowNum, Column: ColumnProductName, Reason: "row skipped: missing product name",
			})
			continue
		}

		rec := domain.RawRecord{
			ID:          strings.TrimSpace(cell(row, cols.id)),
			ProductName: name,
			Periods:     make([]domain.RawPeriod, cols.periodCount),
		}
		rec.OpeningInventory = cols.number(res, row, rowNum, cols.opening)
		if rec.OpeningInventory < 0 {
			res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
				Row: rowNum, Column: ColumnOpeningInventory,
				Value:  cell(row, cols.opening),
				Reason: "negative opening inventory",
			})
		}

		for p := 1; p <= cols.periodCount; p++ {
			fields := cols.periods[p]
			period := &rec.Periods[p-1]
			period.ProcurementQty = cols.number(res, row, rowNum, fieldIndex(fields, procurementQty))
			period.SalesQty = cols.number(res, row, rowNum, fieldIndex(fields, salesQty))
			period.ProcurementPrice = cols.price(res, row, rowNum, fieldIndex(fields, procurementPrice))
			period.SalesPrice = cols.price(res, row, rowNum, fieldIndex(fields, salesPrice))
		}
		res.Records = append(res.Records, rec)
	}

	d.logger.DebugContext(ctx, "Decoded inventory rows",
		slog.Int("records", len(res.Records)),
		slog.Int("periods", cols.periodCount),
		slog.Int("diagnostics", len(res.Diagnostics)))
	return res, nil
}

func findHeader(rows [][]string) int {
	for i := 0; i < len(rows) && i < headerScanDepth; i++ {
		for _, c := range rows[i] {
			if strings.EqualFold(strings.TrimSpace(c), ColumnProductName) {
				return i
			}
		}
	}
	return -1
}

func mapColumns(header []string) *columnMap {
	cols := &columnMap{
		id: -1, name: -1, opening: -1,
		periods: make(map[int]map[periodField]int),
		headers: header,
	}
	maxDay := 0
	for i, h := range header {
		switch {
		case strings.EqualFold(strings.TrimSpace(h), ColumnID):
			cols.id = i
		case strings.EqualFold(strings.TrimSpace(h), ColumnProductName):
			cols.name = i
		case strings.EqualFold(strings.TrimSpace(h), ColumnOpeningInventory):
			cols.opening = i
		default:
			m := periodColumn.FindStringSubmatch(h)
			if m == nil {
				continue
			}
			day, err := strconv.Atoi(m[3])
			if err != nil || day < 1 {
				continue
			}
			field := procurementQty
			switch strings.ToLower(m[1]) + " " + strings.ToLower(m[2]) {
			case "procurement price":
				field = procurementPrice
			case "sales qty":
				field = salesQty
			case "sales price":
				field = salesPrice
			}
			if cols.periods[day] == nil {
				cols.periods[day] = make(map[periodField]int)
			}
			cols.periods[day][field] = i
			maxDay = max(maxDay, day)
		}
	}
	cols.periodCount = max(maxDay, domain.DefaultPeriodCount)
	return cols
}

// number reads a quantity cell; unparsable values become 0 with a diagnostic
func (c *columnMap) number(res *DecodeResult, row []string, rowNum, idx int) float64 {
	raw := cell(row, idx)
	v, ok := ParseCurrencyStrict(raw)
	if !ok {
		res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
			Row: rowNum, Column: c.header(idx), Value: raw, Reason: "not a number, treated as 0",
		})
	}
	return v
}

// price keeps the raw cell text for the currency parser and records a
// diagnostic when it will not parse
func (c *columnMap) price(res *DecodeResult, row []string, rowNum, idx int) any {
	raw := cell(row, idx)
	if _, ok := ParseCurrencyStrict(raw); !ok {
		res.Diagnostics = append(res.Diagnostics, domain.Diagnostic{
			Row: rowNum, Column: c.header(idx), Value: raw, Reason: "not a currency amount, treated as 0",
		})
	}
	return raw
}

func (c *columnMap) header(idx int) string {
	if idx < 0 || idx >= len(c.headers) {
		return ""
	}
	return strings.TrimSpace(c.headers[idx])
}

func fieldIndex(fields map[periodField]int, f periodField) int {
	if fields == nil {
		return -1
	}
	if idx, ok := fields[f]; ok {
		return idx
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

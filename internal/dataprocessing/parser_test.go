package dataprocessing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"productpulse/internal/shared/testutil"
	"productpulse/pkg/contracts/domain"
)

// buildWorkbook writes rows to the named sheet of a fresh workbook and
// returns the encoded .xlsx bytes.
func buildWorkbook(t *testing.T, sheet string, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestDecodeWorkbook(t *testing.T) {
	data := buildWorkbook(t, "Inventory",
		testutil.InventoryHeader,
		testutil.WidgetRow,
		[]any{"P2", "Gadget", 40, 1, "$1,000.00", 2, "n/a", "", "", "", "", "", "", "", ""},
	)

	logger, logs := testutil.NewTestLogger(t)
	res, err := NewDecoder(logger).Decode(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	assert.True(t, logs.ContainsMessage("Found inventory data in sheet"))
	assert.Equal(t, "Inventory", res.Sheet)
	require.Len(t, res.Records, 2)

	widget := res.Records[0]
	assert.Equal(t, "P1", widget.ID)
	assert.Equal(t, "Widget", widget.ProductName)
	assert.Equal(t, 100.0, widget.OpeningInventory)
	require.Len(t, widget.Periods, 3)
	assert.Equal(t, 10.0, widget.Periods[0].ProcurementQty)
	assert.Equal(t, "$2.50", widget.Periods[2].ProcurementPrice)

	obs := ExpandRecord(widget)
	assert.InDelta(t, 90, obs[2].Inventory, 1e-9)
	assert.InDelta(t, 37.5, obs[2].ProcurementAmount, 1e-9)

	gadget := res.Records[1]
	assert.Equal(t, 1000.0, ParseCurrency(gadget.Periods[0].ProcurementPrice))
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 3, res.Diagnostics[0].Row)
	assert.Equal(t, "Sales Price (Day 1)", res.Diagnostics[0].Column)
	assert.Equal(t, "n/a", res.Diagnostics[0].Value)
}

func TestDecodeFindsHeaderOnLaterSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Cover page"))
	require.NoError(t, f.SetCellValue("Data", "A1", "Quarterly stock"))
	header := testutil.InventoryHeader
	require.NoError(t, f.SetSheetRow("Data", "A3", &header))
	row := []any{"X", "Sprocket", 5}
	require.NoError(t, f.SetSheetRow("Data", "A4", &row))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	res, err := NewDecoder(nil).Decode(context.Background(), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "Data", res.Sheet)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Sprocket", res.Records[0].ProductName)
	assert.Len(t, res.Records[0].Periods, 3, "missing period columns still yield three periods")
}

func TestDecodeErrors(t *testing.T) {
	dec := NewDecoder(nil)

	_, err := dec.Decode(context.Background(), bytes.NewReader([]byte("not a zip file")))
	assert.Error(t, err)

	data := buildWorkbook(t, "Sheet1", []any{"Name", "Qty"}, []any{"a", 1})
	_, err = dec.Decode(context.Background(), bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrHeaderNotFound)

	_, err = dec.DecodeRows(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyWorkbook)
}

func TestDecodeRowsDiscoversPeriodCount(t *testing.T) {
	rows := [][]string{
		{"ID", "product name", "Opening Inventory", "Sales Qty (Day 5)", "Sales Price (day 5)"},
		{"A", "Anvil", "12", "2", "$10"},
		{"", "", ""},
		{"B", "", "3"},
		{"C", "Bellows", "-4", "oops"},
	}

	res, err := NewDecoder(nil).DecodeRows(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	require.Len(t, res.Records[0].Periods, 5)
	assert.Equal(t, 2.0, res.Records[0].Periods[4].SalesQty)
	assert.Equal(t, "$10", res.Records[0].Periods[4].SalesPrice)
	assert.Zero(t, res.Records[0].Periods[0].SalesQty)

	obs := ExpandRecord(res.Records[0])
	assert.InDelta(t, 10, obs[4].Inventory, 1e-9)
	assert.InDelta(t, 20, obs[4].SalesAmount, 1e-9)

	reasons := make([]string, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		reasons = append(reasons, d.Reason)
	}
	assert.ElementsMatch(t, []string{
		"row skipped: missing product name",
		"negative opening inventory",
		"not a number, treated as 0",
	}, reasons)
}

func TestDecodeRowsRejectsOverflowingCells(t *testing.T) {
	rows := [][]string{
		{"ID", "Product Name", "Opening Inventory", "Procurement Qty (Day 1)", "Procurement Price (Day 1)", "Sales Qty (Day 1)", "Sales Price (Day 1)"},
		{"P1", "Widget", "100", "1e400", "$2.00", "5", "1e400"},
	}

	res, err := NewDecoder(nil).DecodeRows(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Zero(t, res.Records[0].Periods[0].ProcurementQty)

	columns := make([]string, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		columns = append(columns, d.Column)
		assert.Equal(t, "1e400", d.Value)
	}
	assert.ElementsMatch(t, []string{"Procurement Qty (Day 1)", "Sales Price (Day 1)"}, columns)

	var obs []domain.Observation
	require.NotPanics(t, func() { obs = Normalize(res.Records) })
	require.Len(t, obs, 3)
	assert.Zero(t, obs[0].ProcurementAmount)
	assert.Zero(t, obs[0].SalesAmount)
	assert.InDelta(t, 95, obs[0].Inventory, 1e-9)
}

func TestDecodeRowsHonoursCancellation(t *testing.T) {
	rows := make([][]string, 0, 1001)
	rows = append(rows, []string{"Product Name"})
	for i := 0; i < 1000; i++ {
		rows = append(rows, []string{"p"})
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDecoder(nil).DecodeRows(ctx, rows)
	assert.ErrorIs(t, err, context.Canceled)
}

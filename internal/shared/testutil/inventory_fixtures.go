package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// InventorySheet is the sheet name used by generated workbooks
const InventorySheet = "Inventory"

// InventoryHeader is the three-period header row of an inventory workbook
var InventoryHeader = []any{
	"ID", "Product Name", "Opening Inventory",
	"Procurement Qty (Day 1)", "Procurement Price (Day 1)", "Sales Qty (Day 1)", "Sales Price (Day 1)",
	"Procurement Qty (Day 2)", "Procurement Price (Day 2)", "Sales Qty (Day 2)", "Sales Price (Day 2)",
	"Procurement Qty (Day 3)", "Procurement Price (Day 3)", "Sales Qty (Day 3)", "Sales Price (Day 3)",
}

// WidgetRow is a record whose expansion is fully known:
// inventory 105/85/90, procurement 20/0/37.5, sales 15/70/40.
var WidgetRow = []any{"P1", "Widget", 100, 10, "$2.00", 5, "$3.00", 0, "$0", 20, "$3.50", 15, "$2.50", 10, "$4.00"}

// GadgetRow is a second well-formed record.
var GadgetRow = []any{"P2", "Gadget", 50, 5, "$1.00", 10, "$2.00", 0, "", 0, "", 20, "$1.50", 5, "$2.50"}

// InventoryWorkbook encodes the header followed by rows as .xlsx bytes.
// With no rows it uses WidgetRow and GadgetRow.
func InventoryWorkbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	if len(rows) == 0 {
		rows = [][]any{WidgetRow, GadgetRow}
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), InventorySheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}

	all := append([][]any{InventoryHeader}, rows...)
	for i := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(InventorySheet, cell, &all[i]); err != nil {
			t.Fatalf("write row %d: %v", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("encode workbook: %v", err)
	}
	return buf.Bytes()
}

// WriteInventoryWorkbook saves InventoryWorkbook output under dir and
// returns the file path.
func WriteInventoryWorkbook(t *testing.T, dir, name string, rows ...[]any) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, InventoryWorkbook(t, rows...), 0o600); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return path
}

// Package shared groups helpers used across the dashboard's packages.
//
// The testutil subpackage provides:
//
//   - a buffered slog handler with assertions on recorded entries
//   - inventory workbook fixtures (WidgetRow, GadgetRow) encoded with excelize
//
// Example usage:
//
//	func TestUpload(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    workbook := testutil.InventoryWorkbook(t)
//	    // ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "Dataset replaced")
//	}
package shared

// Package exporter renders observations and summaries for download.
//
// CSVWriter streams rows to any io.Writer, optionally prefixed with a UTF-8
// BOM so spreadsheet applications detect the encoding. The observation and
// summary exporters build on it; FormatCurrency renders amounts for summary
// cards using ISO 4217 currency rules.
//
// Example usage:
//
//	var buf bytes.Buffer
//	err := exporter.ExportObservations(&buf, dataset, exporter.WriteOptions{BOMPrefix: true})
package exporter

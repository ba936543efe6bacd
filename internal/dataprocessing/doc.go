// Package dataprocessing turns inventory spreadsheets into a per-period
// time series and answers the dashboard's questions about it.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Decoder: reads .xlsx workbooks (or raw cell grids) into wide-format records
// 2. Expander: converts each record into one observation per period, carrying
// inventory forward from the opening level
// 3. Query: filters a dataset by selection and aggregates the subset
// 4. Chart: pivots a selection into period-indexed chart rows
//
// # Usage
//
//	res, err := dataprocessing.NewDecoder(logger).Decode(ctx, file)
//	if err != nil {
//	    return err
//	}
//	ds := dataprocessing.Normalize(res.Records)
//	subset := dataprocessing.Filter(ds, []string{"Widget"}, []int{1, 2, 3})
//	summary := dataprocessing.Aggregate(subset)
//	chart := dataprocessing.BuildChartMatrix(ds, []string{"Widget"}, []int{1, 2, 3})
//
// # Data Flow
//
//	Workbook → Decoder → RawRecords → Normalize → Dataset → Filter → Aggregate / BuildChartMatrix
//
// Everything after the decoder is pure and safe for concurrent use on a
// shared, read-only dataset.
package dataprocessing

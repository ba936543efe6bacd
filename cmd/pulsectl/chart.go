package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"

	"github.com/google/subcommands"

	"productpulse/internal/dataprocessing"
)

type chartCmd struct {
	workbookFlags
	out io.Writer
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "print the chart rows of a selection as JSON" }
func (*chartCmd) Usage() string {
	return `pulsectl chart -in <workbook.xlsx> [-products a,b] [-days 1,2]

  Prints the chart matrix the dashboard would draw for the selection: one
  row per day, single-product metrics or one series per product.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "in", "", "inventory workbook to read")
	f.StringVar(&c.products, "products", "", "comma separated product names (defaults to all)")
	f.StringVar(&c.days, "days", "", "comma separated days (defaults to all)")
	f.BoolVar(&c.verbose, "v", false, "log decoding details to standard error")
}

func (c *chartCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	nd, err := c.load(ctx)
	if err != nil {
		return fail(err)
	}
	reportDiagnostics(nd.Diagnostics)

	sel, err := c.selection(nd.Dataset)
	if err != nil {
		return fail(err)
	}

	matrix := dataprocessing.BuildChartMatrix(nd.Dataset, sel.Products, sel.Periods)
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(matrix); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

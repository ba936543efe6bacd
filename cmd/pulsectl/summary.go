package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/subcommands"

	"productpulse/internal/dataprocessing"
	"productpulse/internal/exporter"
)

type summaryCmd struct {
	workbookFlags
	currency string
	asJSON   bool
	cards    bool
	out      io.Writer
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the totals of a product and day selection" }
func (*summaryCmd) Usage() string {
	return `pulsectl summary -in <workbook.xlsx> [-products a,b] [-days 1,2] [-currency USD] [-json] [-cards]

  Prints the aggregate figures of the selection. With -cards it prints one
  CSV row per selected product instead.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "in", "", "inventory workbook to read")
	f.StringVar(&c.products, "products", "", "comma separated product names (defaults to all)")
	f.StringVar(&c.days, "days", "", "comma separated days (defaults to all)")
	f.StringVar(&c.currency, "currency", exporter.DefaultCurrency, "ISO 4217 code used to format amounts")
	f.BoolVar(&c.asJSON, "json", false, "print JSON instead of a table")
	f.BoolVar(&c.cards, "cards", false, "print per-product summaries as CSV")
	f.BoolVar(&c.verbose, "v", false, "log decoding details to standard error")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	nd, err := c.load(ctx)
	if err != nil {
		return fail(err)
	}
	reportDiagnostics(nd.Diagnostics)

	sel, err := c.selection(nd.Dataset)
	if err != nil {
		return fail(err)
	}
	subset := dataprocessing.Filter(nd.Dataset, sel.Products, sel.Periods)

	if c.cards {
		cards := dataprocessing.ProductSummaries(subset, sel.Products)
		if err := exporter.ExportProductSummaries(c.out, cards, exporter.WriteOptions{}); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	formatted := exporter.FormatSummary(dataprocessing.Aggregate(subset), c.currency)
	if c.asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(formatted); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Observations\t%d\n", formatted.Count)
	fmt.Fprintf(tw, "Total procurement\t%s\n", formatted.TotalProcurement)
	fmt.Fprintf(tw, "Total sales\t%s\n", formatted.TotalSales)
	fmt.Fprintf(tw, "Net revenue\t%s\n", formatted.NetRevenue)
	fmt.Fprintf(tw, "Average procurement\t%s\n", formatted.AvgProcurement)
	fmt.Fprintf(tw, "Average sales\t%s\n", formatted.AvgSales)
	fmt.Fprintf(tw, "Total inventory\t%s\n", formatted.TotalInventory)
	if err := tw.Flush(); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/subcommands"

	"productpulse/internal/dataprocessing"
	"productpulse/internal/exporter"
	"productpulse/internal/validation"
)

type expandCmd struct {
	workbookFlags
	output string
	bom    bool
	out    io.Writer
}

func (*expandCmd) Name() string     { return "expand" }
func (*expandCmd) Synopsis() string { return "expand a workbook into per-day observations as CSV" }
func (*expandCmd) Usage() string {
	return `pulsectl expand -in <workbook.xlsx> [-out <file.csv>] [-products a,b] [-days 1,2] [-bom]

  Decodes the inventory workbook, expands every product into one row per
  day and writes the observations as CSV to -out or standard output.
`
}

func (c *expandCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "in", "", "inventory workbook to read")
	f.StringVar(&c.output, "out", "", "CSV file to write (defaults to standard output)")
	f.StringVar(&c.products, "products", "", "comma separated product names (defaults to all)")
	f.StringVar(&c.days, "days", "", "comma separated days (defaults to all)")
	f.BoolVar(&c.bom, "bom", false, "prefix the CSV with a UTF-8 byte order mark for Excel")
	f.BoolVar(&c.verbose, "v", false, "log decoding details to standard error")
}

func (c *expandCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	write := func(w io.Writer) error {
		return exporter.ExportObservations(w, subset, exporter.WriteOptions{BOMPrefix: c.bom})
	}

	if c.output == "" {
		if err := write(c.out); err != nil {
			return fail(err)
		}
		return subcommands.ExitSuccess
	}

	if err := validation.NewFileValidator(c.logger()).ValidateOutputDirectory(filepath.Dir(c.output)); err != nil {
		return fail(err)
	}
	if err := exporter.WriteFile(c.output, write); err != nil {
		return fail(err)
	}
	fmt.Fprintf(c.out, "wrote %d observations to %s\n", len(subset), c.output)
	return subcommands.ExitSuccess
}

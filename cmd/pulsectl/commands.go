package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"

	"productpulse/internal/dataprocessing"
	"productpulse/internal/validation"
	"productpulse/pkg/contracts/domain"
)

// commands returns every pulsectl subcommand writing to out
func commands(out io.Writer, in io.Reader) []subcommands.Command {
	return []subcommands.Command{
		&expandCmd{out: out},
		&summaryCmd{out: out},
		&chartCmd{out: out},
		&hashPasswordCmd{out: out, in: in},
	}
}

// workbookFlags are shared by the commands that read a workbook
type workbookFlags struct {
	input    string
	products string
	days     string
	verbose  bool
}

func (w *workbookFlags) logger() *slog.Logger {
	level := slog.LevelWarn
	if w.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// load validates, decodes and normalizes the input workbook
func (w *workbookFlags) load(ctx context.Context) (domain.NormalizedDataset, error) {
	if w.input == "" {
		return domain.NormalizedDataset{}, fmt.Errorf("an input workbook is required (-in)")
	}
	logger := w.logger()

	if err := validation.NewFileValidator(logger).ValidateWorkbookFile(w.input); err != nil {
		return domain.NormalizedDataset{}, err
	}

	f, err := os.Open(w.input)
	if err != nil {
		return domain.NormalizedDataset{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	result, err := dataprocessing.NewDecoder(logger).Decode(ctx, f)
	if err != nil {
		return domain.NormalizedDataset{}, err
	}
	return dataprocessing.NormalizeWithDiagnostics(result, w.input), nil
}

// selection resolves the -products and -days flags against ds. Empty lists
// select everything.
func (w *workbookFlags) selection(ds domain.Dataset) (domain.Selection, error) {
	sel := domain.Selection{
		Products: splitList(w.products),
		Periods:  []int{},
	}
	for _, d := range splitList(w.days) {
		day, err := strconv.Atoi(d)
		if err != nil || day < 1 {
			return domain.Selection{}, fmt.Errorf("invalid day %q: days are positive integers", d)
		}
		sel.Periods = append(sel.Periods, day)
	}

	if len(sel.Products) == 0 {
		sel.Products = dataprocessing.UniqueProducts(ds)
	}
	if len(sel.Periods) == 0 {
		sel.Periods = dataprocessing.UniquePeriods(ds)
	}
	return sel, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func reportDiagnostics(diags []domain.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "warning: row %d column %q: %s (%q read as 0)\n", d.Row, d.Column, d.Reason, d.Value)
	}
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"productpulse/internal/config"
)

// DefaultRange is read when the caller does not name one
const DefaultRange = "A1:ZZ"

var (
	// ErrDisabled is returned when no credentials file is configured
	ErrDisabled = errors.New("google sheets import is not configured")
	// ErrInvalidRequest is returned for a missing spreadsheet id
	ErrInvalidRequest = errors.New("spreadsheet id is required")
)

// Client fetches cell values with the Sheets v4 API
type Client struct {
	svc     *sheets.Service
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient authenticates with the configured service account credentials.
// Extra options are appended after the credentials option.
func NewClient(ctx context.Context, cfg config.SheetsConfig, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled() && len(opts) == 0 {
		return nil, ErrDisabled
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts,
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(sheets.SpreadsheetsReadonlyScope))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		svc:     svc,
		timeout: cfg.Timeout,
		logger:  logger.With(slog.String("component", "sheets")),
	}, nil
}

// FetchRows reads readRange (A1 notation, optionally sheet-qualified) and
// returns every row as strings. Trailing empty cells are omitted by the API,
// so rows may differ in length.
func (c *Client) FetchRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, ErrInvalidRequest
	}
	if strings.TrimSpace(readRange) == "" {
		readRange = DefaultRange
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		c.logger.WarnContext(ctx, "sheets fetch failed",
			slog.String("spreadsheet_id", spreadsheetID),
			slog.String("range", readRange),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to read %s from spreadsheet %s: %w", readRange, spreadsheetID, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, values := range resp.Values {
		row := make([]string, len(values))
		for i, v := range values {
			if v != nil {
				row[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}

	c.logger.InfoContext(ctx, "sheets range fetched",
		slog.String("spreadsheet_id", spreadsheetID),
		slog.String("range", resp.Range),
		slog.Int("rows", len(rows)),
		slog.Duration("duration", time.Since(start)))
	return rows, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"productpulse/internal/dataprocessing"
	"productpulse/internal/exporter"
	"productpulse/internal/infrastructure"
	"productpulse/internal/sheets"
	"productpulse/internal/storage"
	"productpulse/internal/websocket"
	"productpulse/pkg/contracts/domain"
)

// UploadSucceeded is the message returned for every accepted dataset
const UploadSucceeded = "Data uploaded successfully"

// Upload sources, used as a low-cardinality metric attribute
const (
	SourceUpload = "upload"
	SourceSheets = "sheets"
)

// Broadcaster pushes events to connected dashboards
type Broadcaster interface {
	Broadcast(ctx context.Context, messageType string, data interface{})
}

// RowFetcher reads a cell grid from a remote spreadsheet
type RowFetcher interface {
	FetchRows(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

// UploadResult describes an accepted dataset
type UploadResult struct {
	Message     string              `json:"message"`
	Count       int                 `json:"count"`
	Products    int                 `json:"products"`
	Periods     []int               `json:"days"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
	UploadedAt  time.Time           `json:"uploaded_at"`
}

// DatasetReplacedEvent is broadcast after a dataset has been replaced
type DatasetReplacedEvent struct {
	Count      int       `json:"count"`
	Products   []string  `json:"products"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DataService owns the current dataset. The store is the source of truth;
// an in-memory copy serves selection queries and is swapped only after the
// store accepted a new dataset.
type DataService struct {
	store   storage.Store
	decoder *dataprocessing.Decoder
	hub     Broadcaster
	sheets  RowFetcher
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	// writeMu serializes writers from persist through swap so the store and
	// the in-memory copy always hold the same dataset
	writeMu sync.Mutex

	mu      sync.RWMutex
	current domain.NormalizedDataset
}

// NewDataService creates a data service. hub and metrics may be nil.
func NewDataService(store storage.Store, hub Broadcaster, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "data_service"))

	return &DataService{
		store:   store,
		decoder: dataprocessing.NewDecoder(logger),
		hub:     hub,
		metrics: metrics,
		logger:  logger,
		current: domain.NormalizedDataset{Dataset: domain.Dataset{}, Diagnostics: []domain.Diagnostic{}},
	}
}

// SetSheetsSource enables ImportSheet
func (s *DataService) SetSheetsSource(f RowFetcher) {
	s.sheets = f
}

// SheetsEnabled reports whether a sheets source is configured
func (s *DataService) SheetsEnabled() bool {
	return s.sheets != nil
}

// Load fills the in-memory copy from the store, e.g. after a restart
func (s *DataService) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ds, err := s.store.All(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.mu.Lock()
	s.current = domain.NormalizedDataset{
		Dataset:     ds,
		Diagnostics: []domain.Diagnostic{},
		Source:      "storage",
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Dataset loaded from storage", slog.Int("observations", len(ds)))
	return nil
}

// Upload decodes an inventory workbook and replaces the current dataset.
// name identifies the file in logs and in the stored dataset.
func (s *DataService) Upload(ctx context.Context, r io.Reader, name string) (*UploadResult, error) {
	start := time.Now()

	result, err := s.decoder.Decode(ctx, r)
	if err != nil {
		return nil, s.decodeFailed(ctx, SourceUpload, start, err)
	}
	return s.replace(ctx, SourceUpload, name, result, start)
}

// ImportRows decodes a grid of cells and replaces the current dataset
func (s *DataService) ImportRows(ctx context.Context, rows [][]string, name string) (*UploadResult, error) {
	start := time.Now()

	result, err := s.decoder.DecodeRows(ctx, rows)
	if err != nil {
		return nil, s.decodeFailed(ctx, SourceSheets, start, err)
	}
	return s.replace(ctx, SourceSheets, name, result, start)
}

// ImportSheet fetches a Google Sheets range and replaces the current dataset
func (s *DataService) ImportSheet(ctx context.Context, spreadsheetID, readRange string) (*UploadResult, error) {
	if s.sheets == nil {
		return nil, ErrSheetsDisabled
	}

	rows, err := s.sheets.FetchRows(ctx, spreadsheetID, readRange)
	if err != nil {
		switch {
		case errors.Is(err, sheets.ErrInvalidRequest):
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			s.metrics.RecordUpload(ctx, SourceSheets, 0, 0, 0, err)
			return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
		}
	}
	return s.ImportRows(ctx, rows, "sheets:"+strings.TrimSpace(spreadsheetID))
}

func (s *DataService) decodeFailed(ctx context.Context, source string, start time.Time, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.metrics.RecordUpload(ctx, source, time.Since(start), 0, 0, err)
	s.logger.WarnContext(ctx, "Dataset decode failed",
		slog.String("source", source),
		slog.String("error", err.Error()))
	return fmt.Errorf("%w: %w", ErrDecodeFailed, err)
}

func (s *DataService) replace(ctx context.Context, source, name string, result *dataprocessing.DecodeResult, start time.Time) (*UploadResult, error) {
	nd := dataprocessing.NormalizeWithDiagnostics(result, name)
	if len(nd.Dataset) == 0 {
		s.metrics.RecordUpload(ctx, source, time.Since(start), 0, len(nd.Diagnostics), ErrNoValidData)
		s.logger.WarnContext(ctx, "Upload contained no valid rows",
			slog.String("source", name),
			slog.Int("diagnostics", len(nd.Diagnostics)))
		return nil, ErrNoValidData
	}

	if err := s.swap(ctx, nd); err != nil {
		s.metrics.RecordUpload(ctx, source, time.Since(start), 0, 0, err)
		s.logger.ErrorContext(ctx, "Failed to persist dataset",
			slog.String("source", name),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	products := dataprocessing.UniqueProducts(nd.Dataset)
	periods := dataprocessing.UniquePeriods(nd.Dataset)
	duration := time.Since(start)

	s.metrics.RecordUpload(ctx, source, duration, len(nd.Dataset), len(nd.Diagnostics), nil)
	s.logger.InfoContext(ctx, "Dataset replaced",
		slog.String("source", name),
		slog.Int("observations", len(nd.Dataset)),
		slog.Int("products", len(products)),
		slog.Int("diagnostics", len(nd.Diagnostics)),
		slog.Duration("duration", duration))

	if s.hub != nil {
		s.hub.Broadcast(ctx, websocket.TypeDatasetReplaced, DatasetReplacedEvent{
			Count:      len(nd.Dataset),
			Products:   products,
			UploadedAt: nd.UploadedAt,
		})
	}

	return &UploadResult{
		Message:     UploadSucceeded,
		Count:       len(nd.Dataset),
		Products:    len(products),
		Periods:     periods,
		Diagnostics: nd.Diagnostics,
		UploadedAt:  nd.UploadedAt,
	}, nil
}

// swap persists nd and then makes it the in-memory dataset
func (s *DataService) swap(ctx context.Context, nd domain.NormalizedDataset) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.ReplaceAll(ctx, nd.Dataset); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = nd
	s.mu.Unlock()
	return nil
}

// Dataset returns the current dataset. Callers must not modify it.
func (s *DataService) Dataset() domain.NormalizedDataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Diagnostics returns the substitutions made while decoding the current dataset
func (s *DataService) Diagnostics() []domain.Diagnostic {
	return s.Dataset().Diagnostics
}

// Series returns one product's observations in period order
func (s *DataService) Series(ctx context.Context, product string) (domain.Dataset, error) {
	ds, err := s.store.ByProduct(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return ds, nil
}

// Products returns the distinct product names in ascending order
func (s *DataService) Products(ctx context.Context) ([]string, error) {
	names, err := s.store.ProductNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return names, nil
}

// SearchProducts returns the product names containing term, ignoring case
func (s *DataService) SearchProducts(ctx context.Context, term string) ([]string, error) {
	names, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	return dataprocessing.SearchProducts(names, term), nil
}

// Periods returns the distinct periods of the current dataset
func (s *DataService) Periods() []int {
	return dataprocessing.UniquePeriods(s.Dataset().Dataset)
}

// ResolveSelection fills an unspecified (nil) product list or an empty period
// list with every product or period of the current dataset. A non-nil empty
// product list is an explicit empty selection and matches nothing.
func (s *DataService) ResolveSelection(sel domain.Selection) domain.Selection {
	ds := s.Dataset().Dataset

	products := make([]string, 0, len(sel.Products))
	for _, p := range sel.Products {
		if p = strings.TrimSpace(p); p != "" {
			products = append(products, p)
		}
	}
	if sel.Products == nil {
		products = dataprocessing.UniqueProducts(ds)
	}

	periods := sel.Periods
	if len(periods) == 0 {
		periods = dataprocessing.UniquePeriods(ds)
	}
	return domain.Selection{Products: products, Periods: periods}
}

// Observations returns the observations within the selection
func (s *DataService) Observations(sel domain.Selection) domain.Dataset {
	sel = s.ResolveSelection(sel)
	return dataprocessing.Filter(s.Dataset().Dataset, sel.Products, sel.Periods)
}

// Summary aggregates the observations within the selection
func (s *DataService) Summary(sel domain.Selection) domain.Summary {
	return dataprocessing.Aggregate(s.Observations(sel))
}

// ProductSummaries returns one summary card per selected product
func (s *DataService) ProductSummaries(sel domain.Selection) []domain.ProductSummary {
	sel = s.ResolveSelection(sel)
	subset := dataprocessing.Filter(s.Dataset().Dataset, sel.Products, sel.Periods)
	return dataprocessing.ProductSummaries(subset, sel.Products)
}

// Chart builds the chart matrix for the selection
func (s *DataService) Chart(sel domain.Selection) domain.ChartMatrix {
	sel = s.ResolveSelection(sel)
	return dataprocessing.BuildChartMatrix(s.Dataset().Dataset, sel.Products, sel.Periods)
}

// ExportCSV writes the observations within the selection as CSV
func (s *DataService) ExportCSV(w io.Writer, sel domain.Selection) error {
	return exporter.ExportObservations(w, s.Observations(sel), exporter.WriteOptions{BOMPrefix: true})
}

// Ping checks the store
func (s *DataService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

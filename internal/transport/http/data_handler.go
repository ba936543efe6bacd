package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "productpulse/internal/errors"
	"productpulse/internal/exporter"
	mw "productpulse/internal/middleware"
	"productpulse/internal/services"
	"productpulse/internal/validation"
	"productpulse/pkg/contracts/domain"
)

// uploadField is the multipart field carrying the workbook
const uploadField = "file"

// SheetsImportRequest is the body of POST /api/data/import/sheets
type SheetsImportRequest struct {
	SpreadsheetID string `json:"spreadsheet_id" validate:"required,spreadsheetid"`
	Range         string `json:"range" validate:"omitempty,max=100"`
}

// DataHandler handles dataset uploads and queries with RFC 7807 errors
type DataHandler struct {
	service        DataServiceInterface
	files          *validation.FileValidator
	validator      *mw.ValidationMiddleware
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler
func NewDataHandler(
	service DataServiceInterface,
	validator *mw.ValidationMiddleware,
	maxUploadBytes int64,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *DataHandler {
	return &DataHandler{
		service:        service,
		files:          validation.NewFileValidator(logger),
		validator:      validator,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "data_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the data routes, mounted at /api/data
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetData)
	r.Get("/products", h.GetProducts)
	r.Get("/observations", h.GetObservations)
	r.Get("/summary", h.GetSummary)
	r.Get("/summary/products", h.GetProductSummaries)
	r.Get("/chart", h.GetChart)
	r.Get("/export.csv", h.ExportCSV)
	r.Get("/diagnostics", h.GetDiagnostics)

	r.Post("/upload", h.Upload)
	r.With(mw.ContentTypeValidator("application/json")).Post("/import/sheets", h.ImportSheets)

	return r
}

// Upload handles POST /api/data/upload. The workbook replaces the current dataset.
func (h *DataHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrMissingFile):
			h.errorHandler.HandleError(w, r, apierrors.ErrNoFileUploaded)
		case errors.As(err, &maxBytes):
			h.errorHandler.HandleError(w, r, err)
		default:
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		}
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "upload received",
		slog.String("request_id", reqID),
		slog.String("file", header.Filename),
		slog.Int64("size", header.Size),
	)

	if err := h.files.ValidateWorkbookName(header.Filename); err != nil {
		h.errorHandler.HandleError(w, r, mapDataError(err))
		return
	}
	content, err := h.files.SniffWorkbook(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapDataError(err))
		return
	}

	result, err := h.service.Upload(r.Context(), content, header.Filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapDataError(err))
		return
	}

	render.JSON(w, r, result)
}

// ImportSheets handles POST /api/data/import/sheets
func (h *DataHandler) ImportSheets(w http.ResponseWriter, r *http.Request) {
	var req SheetsImportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.ImportSheet(r.Context(), req.SpreadsheetID, req.Range)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapDataError(err))
		return
	}

	render.JSON(w, r, result)
}

// GetData handles GET /api/data. With ?product= it returns that product's
// series in period order, otherwise the distinct product names.
func (h *DataHandler) GetData(w http.ResponseWriter, r *http.Request) {
	if product := strings.TrimSpace(r.URL.Query().Get("product")); product != "" {
		series, err := h.service.Series(r.Context(), product)
		if err != nil {
			h.errorHandler.HandleError(w, r, mapDataError(err))
			return
		}
		render.JSON(w, r, map[string]interface{}{
			"status": "success",
			"data":   nonNil(series),
			"count":  len(series),
		})
		return
	}

	h.GetProducts(w, r)
}

// GetProducts handles GET /api/data/products with an optional ?search= term
func (h *DataHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("search"))
	if len(term) > 100 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("search", "search must be at most 100 characters"))
		return
	}

	var (
		names []string
		err   error
	)
	if term == "" {
		names, err = h.service.Products(r.Context())
	} else {
		names, err = h.service.SearchProducts(r.Context(), term)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, mapDataError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   nonNil(names),
		"count":  len(names),
	})
}

// GetObservations handles GET /api/data/observations
func (h *DataHandler) GetObservations(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selection(w, r)
	if !ok {
		return
	}
	observations := h.service.Observations(sel)
	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"selection": sel,
		"data":      nonNil(observations),
		"count":     len(observations),
	})
}

// GetSummary handles GET /api/data/summary. Amounts are also returned
// formatted in ?currency= (ISO 4217, USD by default).
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selection(w, r)
	if !ok {
		return
	}
	summary := h.service.Summary(sel)
	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"selection": sel,
		"data":      summary,
		"formatted": exporter.FormatSummary(summary, currency(r)),
	})
}

// GetProductSummaries handles GET /api/data/summary/products
func (h *DataHandler) GetProductSummaries(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selection(w, r)
	if !ok {
		return
	}
	cards := h.service.ProductSummaries(sel)
	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"selection": sel,
		"data":      nonNil(cards),
		"formatted": exporter.FormatProductSummaries(cards, currency(r)),
		"count":     len(cards),
	})
}

// GetChart handles GET /api/data/chart
func (h *DataHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selection(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"selection": sel,
		"data":      h.service.Chart(sel),
	})
}

// ExportCSV handles GET /api/data/export.csv
func (h *DataHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.selection(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="observations.csv"`)
	if err := h.service.ExportCSV(w, sel); err != nil {
		// headers are gone once the first row is written
		h.logger.ErrorContext(r.Context(), "csv export failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	}
}

// GetDiagnostics handles GET /api/data/diagnostics
func (h *DataHandler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	diags := h.service.Diagnostics()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   nonNil(diags),
		"count":  len(diags),
	})
}

// selection parses the request selection and fills the defaults. It writes
// the error response itself and reports false on failure.
func (h *DataHandler) selection(w http.ResponseWriter, r *http.Request) (domain.Selection, bool) {
	sel, err := h.validator.ParseSelection(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return domain.Selection{}, false
	}
	return h.service.ResolveSelection(sel), true
}

// mapDataError maps service and validation failures to API errors. Context
// and body size errors pass through; the error handler knows them.
func mapDataError(err error) error {
	switch {
	case errors.Is(err, services.ErrNoValidData), errors.Is(err, validation.ErrEmptyFile):
		return apierrors.ErrNoValidData
	case errors.Is(err, services.ErrDecodeFailed),
		errors.Is(err, validation.ErrNotWorkbook),
		errors.Is(err, validation.ErrTempFile):
		return apierrors.DecodeFailed(err)
	case errors.Is(err, services.ErrStorage):
		return apierrors.ErrStorage
	case errors.Is(err, services.ErrUpstream):
		return apierrors.ErrUpstream
	case errors.Is(err, services.ErrSheetsDisabled):
		return apierrors.New(http.StatusServiceUnavailable, apierrors.CodeUnavailable,
			"Google Sheets import is not configured")
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.InvalidRequestWithError(err)
	}
	return err
}

func currency(r *http.Request) string {
	code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))
	if code == "" {
		return exporter.DefaultCurrency
	}
	return code
}

// nonNil keeps empty results encoded as [] rather than null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

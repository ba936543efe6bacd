package http

import (
	"context"
	"io"
	"time"

	"productpulse/internal/services"
	"productpulse/pkg/contracts/domain"
)

// DataServiceInterface defines the dataset operations used by DataHandler
type DataServiceInterface interface {
	Upload(ctx context.Context, r io.Reader, name string) (*services.UploadResult, error)
	ImportSheet(ctx context.Context, spreadsheetID, readRange string) (*services.UploadResult, error)

	Series(ctx context.Context, product string) (domain.Dataset, error)
	Products(ctx context.Context) ([]string, error)
	SearchProducts(ctx context.Context, term string) ([]string, error)
	Diagnostics() []domain.Diagnostic

	// Selection queries; empty selection lists mean everything
	ResolveSelection(sel domain.Selection) domain.Selection
	Observations(sel domain.Selection) domain.Dataset
	Summary(sel domain.Selection) domain.Summary
	ProductSummaries(sel domain.Selection) []domain.ProductSummary
	Chart(sel domain.Selection) domain.ChartMatrix
	ExportCSV(w io.Writer, sel domain.Selection) error
}

// AuthServiceInterface defines the login operations used by AuthHandler
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password string) (*services.Session, error)
	TokenTTL() time.Duration
}

// HealthServiceInterface defines the probes used by HealthHandler
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}

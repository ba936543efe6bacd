package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"productpulse/internal/config"
	"productpulse/pkg/contracts/domain"
)

// ErrClosed is returned by stores used after Close
var ErrClosed = errors.New("storage: store is closed")

// Store holds the current dataset
type Store interface {
	// ReplaceAll atomically swaps the stored dataset for ds
	ReplaceAll(ctx context.Context, ds domain.Dataset) error
	// All returns every observation in upload order
	All(ctx context.Context) (domain.Dataset, error)
	// ByProduct returns one product's observations in ascending period order
	ByProduct(ctx context.Context, name string) (domain.Dataset, error)
	// ProductNames returns the distinct product names sorted ascending
	ProductNames(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the store selected by the storage configuration
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case config.StorageMemory, "":
		return NewMemoryStore(), nil
	case config.StoragePostgres:
		return NewPostgresStore(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"productpulse/internal/config"
	"productpulse/pkg/contracts/domain"
)

const observationsTable = "product_observations"

var observationColumns = []string{
	"seq", "product_id", "product_name", "period", "inventory", "procurement_amount", "sales_amount",
}

const createTableSQL = `CREATE TABLE IF NOT EXISTS product_observations (
	seq                integer          NOT NULL PRIMARY KEY,
	product_id         text             NOT NULL,
	product_name       text             NOT NULL,
	period             integer          NOT NULL,
	inventory          double precision NOT NULL,
	procurement_amount double precision NOT NULL,
	sales_amount       double precision NOT NULL,
	uploaded_at        timestamptz      NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS product_observations_name_idx ON product_observations (product_name, period);`

const selectColumns = `product_id, product_name, period, inventory, procurement_amount, sales_amount`

// PostgresStore keeps observations in PostgreSQL
type PostgresStore struct {
	pool      *pgxpool.Pool
	logger    *slog.Logger
	closeOnce sync.Once
}

// NewPostgresStore connects, verifies the connection and creates the table if needed
func NewPostgresStore(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("storage: invalid postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = cfg.MinConns
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: postgres ping failed: %w", err)
	}
	if _, err := pool.Exec(connectCtx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: failed to create %s: %w", observationsTable, err)
	}

	logger.InfoContext(ctx, "postgres store ready",
		slog.String("component", "storage"),
		slog.String("host", poolConfig.ConnConfig.Host),
		slog.String("database", poolConfig.ConnConfig.Database),
		slog.Int("max_conns", int(poolConfig.MaxConns)))

	return &PostgresStore{pool: pool, logger: logger.With(slog.String("component", "storage"))}, nil
}

// ReplaceAll deletes the previous dataset and copies ds in one transaction
func (s *PostgresStore) ReplaceAll(ctx context.Context, ds domain.Dataset) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storage: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Concurrent replacements queue here; readers are not blocked.
	if _, err := tx.Exec(ctx, "LOCK TABLE "+observationsTable+" IN EXCLUSIVE MODE"); err != nil {
		return fmt.Errorf("storage: lock observations: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM "+observationsTable); err != nil {
		return fmt.Errorf("storage: clear observations: %w", err)
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{observationsTable},
		observationColumns,
		pgx.CopyFromSlice(len(ds), func(i int) ([]any, error) {
			return observationRow(i, ds[i]), nil
		}),
	)
	if err != nil {
		return fmt.Errorf("storage: copy observations: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	s.logger.DebugContext(ctx, "dataset replaced", slog.Int64("rows", copied))
	return nil
}

// observationRow lays out one observation in observationColumns order
func observationRow(seq int, o domain.Observation) []any {
	return []any{seq, o.ProductID, o.ProductName, o.Period, o.Inventory, o.ProcurementAmount, o.SalesAmount}
}

// All implements Store
func (s *PostgresStore) All(ctx context.Context) (domain.Dataset, error) {
	return s.query(ctx, "SELECT "+selectColumns+" FROM "+observationsTable+" ORDER BY seq")
}

// ByProduct implements Store
func (s *PostgresStore) ByProduct(ctx context.Context, name string) (domain.Dataset, error) {
	return s.query(ctx, "SELECT "+selectColumns+" FROM "+observationsTable+
		" WHERE product_name = $1 ORDER BY period, seq", name)
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) (domain.Dataset, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: query observations: %w", err)
	}
	ds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Observation, error) {
		var o domain.Observation
		err := row.Scan(&o.ProductID, &o.ProductName, &o.Period, &o.Inventory, &o.ProcurementAmount, &o.SalesAmount)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("storage: scan observations: %w", err)
	}
	if ds == nil {
		ds = domain.Dataset{}
	}
	return ds, nil
}

// ProductNames implements Store
func (s *PostgresStore) ProductNames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT product_name FROM "+observationsTable+" ORDER BY product_name COLLATE \"C\"")
	if err != nil {
		return nil, fmt.Errorf("storage: query product names: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("storage: scan product names: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Count implements Store
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM "+observationsTable).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count observations: %w", err)
	}
	return n, nil
}

// Ping implements Store
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close implements Store
func (s *PostgresStore) Close() error {
	s.closeOnce.Do(s.pool.Close)
	return nil
}

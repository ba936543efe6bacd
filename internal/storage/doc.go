// Package storage persists the normalized observations of the most recent
// upload. Each upload replaces the previous dataset as a whole.
//
// Two implementations are provided: MemoryStore, the default, and
// PostgresStore, which keeps observations in a product_observations table
// through a pgx connection pool.
package storage

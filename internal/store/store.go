package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const DefaultSchema = "smartFlo"

type Store struct {
	pool   *pgxpool.Pool
	schema string
	logger *slog.Logger
}

// New connects to databaseURL and pings it. Call and question tables are read from schema.
func New(ctx context.Context, databaseURL, schema string, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if schema == "" {
		schema = DefaultSchema
	}
	return &Store{pool: pool, schema: schema, logger: logger}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// table returns the schema-qualified, quoted name of table.
func (s *Store) table(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

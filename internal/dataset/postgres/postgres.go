// Package postgres implements a Postgres dataset source using pgx v5. Rows
// are fetched with a pooled connection and sliced into fixed-size partitions
// for the engine.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ysing58/dataquality/internal/dataset"
	"github.com/ysing58/dataquality/pkg/records"
)

// Config holds Postgres source configuration.
type Config struct {
	DSN   string // connection string for pgxpool
	Table string // fully qualified table name, e.g. "public.customers"
	Query string // optional; overrides Table when set
	// Columns optionally restricts the selected columns (Table mode only).
	Columns       []string
	PartitionSize int
}

// Source is a Postgres-backed dataset.
type Source struct {
	pool *pgxpool.Pool
	cfg  Config
}

// Open constructs a Source. The caller owns it and releases the pool with
// Close.
func Open(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.Table == "" && cfg.Query == "" {
		return nil, fmt.Errorf("postgres: table or query required")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Source{pool: pool, cfg: cfg}, nil
}

// Close releases the connection pool. Implements io.Closer so factory-opened
// datasets can be cleaned up through a type assertion.
func (s *Source) Close() error {
	s.pool.Close()
	return nil
}

// Partitions implements dataset.Dataset. The query runs once; results are
// materialized and chunked so partitions can be evaluated concurrently
// without holding a connection each.
func (s *Source) Partitions(ctx context.Context) ([]dataset.Partition, error) {
	rows, err := s.pool.Query(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	var recs []records.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		rec := make(records.Record, len(columns))
		for i, col := range columns {
			rec[col] = values[i]
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}

	size := s.cfg.PartitionSize
	if size <= 0 {
		size = dataset.DefaultPartitionSize
	}
	return dataset.Chunk(recs, size).Partitions(ctx)
}

func (s *Source) query() string {
	if s.cfg.Query != "" {
		return s.cfg.Query
	}
	cols := "*"
	if len(s.cfg.Columns) > 0 {
		quoted := make([]string, len(s.cfg.Columns))
		for i, c := range s.cfg.Columns {
			quoted[i] = pgIdent(c)
		}
		cols = strings.Join(quoted, ", ")
	}
	return fmt.Sprintf("SELECT %s FROM %s", cols, pgFQN(s.cfg.Table))
}

// pgIdent quotes a single identifier.
func pgIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// pgFQN quotes a possibly schema-qualified name part by part.
func pgFQN(s string) string {
	parts := strings.Split(s, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// init registers the "postgres" source with the dataset factory. The returned
// dataset implements io.Closer; callers release the pool by closing it.
func init() {
	dataset.Register("postgres", func(ctx context.Context, cfg dataset.Config) (dataset.Dataset, error) {
		src, err := Open(ctx, Config{
			DSN:           cfg.DSN,
			Table:         cfg.Table,
			Query:         cfg.Query,
			Columns:       cfg.Columns,
			PartitionSize: cfg.Rows(),
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	})
}

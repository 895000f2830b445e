// Package sqlds holds the database/sql plumbing shared by the SQLite and
// MSSQL dataset sources: run one query, scan rows into records, chunk into
// partitions. pgx has its own richer path in dataset/postgres.
package sqlds

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ysing58/dataquality/internal/dataset"
	"github.com/ysing58/dataquality/pkg/records"
)

// Config describes what to read.
type Config struct {
	Table         string
	Query         string // overrides Table when set
	Columns       []string
	PartitionSize int
	// QuoteIdent quotes one identifier for the backend's dialect.
	QuoteIdent func(string) string
}

// Source is a database/sql-backed dataset.
type Source struct {
	db  *sql.DB
	cfg Config
}

// New builds a Source over db. The Source takes ownership; Close releases
// the handle.
func New(db *sql.DB, cfg Config) *Source {
	return &Source{db: db, cfg: cfg}
}

// Close closes the underlying database handle. Implements io.Closer so
// factory-opened datasets can be cleaned up through a type assertion.
func (s *Source) Close() error {
	return s.db.Close()
}

// Partitions implements dataset.Dataset.
func (s *Source) Partitions(ctx context.Context) ([]dataset.Partition, error) {
	rows, err := s.db.QueryContext(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("sqlds: query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlds: columns: %w", err)
	}

	var recs []records.Record
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlds: scan: %w", err)
		}
		rec := make(records.Record, len(columns))
		for i, col := range columns {
			v := values[i]
			// Drivers hand back []byte for text columns; keep records
			// string-typed so rules compare consistently across sources.
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			rec[col] = v
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlds: rows: %w", err)
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
	quote := s.cfg.QuoteIdent
	if quote == nil {
		quote = func(v string) string { return v }
	}
	cols := "*"
	if len(s.cfg.Columns) > 0 {
		quoted := make([]string, len(s.cfg.Columns))
		for i, c := range s.cfg.Columns {
			quoted[i] = quote(c)
		}
		cols = strings.Join(quoted, ", ")
	}
	parts := strings.Split(s.cfg.Table, ".")
	for i, p := range parts {
		parts[i] = quote(p)
	}
	return fmt.Sprintf("SELECT %s FROM %s", cols, strings.Join(parts, "."))
}

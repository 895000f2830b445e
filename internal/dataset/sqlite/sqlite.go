// Package sqlite implements a SQLite dataset source using database/sql with
// the modernc.org driver (no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver; pure Go, no cgo.
	_ "modernc.org/sqlite"

	"github.com/ysing58/dataquality/internal/dataset"
	"github.com/ysing58/dataquality/internal/dataset/sqlds"
)

// Config holds SQLite source configuration.
type Config struct {
	// DSN is passed directly to database/sql, e.g. "file:data.db" or
	// "data.db".
	DSN           string
	Table         string
	Query         string
	Columns       []string
	PartitionSize int
}

// Open opens the database and returns the dataset. The source implements
// io.Closer; Close releases the handle.
func Open(ctx context.Context, cfg Config) (*sqlds.Source, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if cfg.Table == "" && cfg.Query == "" {
		return nil, fmt.Errorf("sqlite: table or query required")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return sqlds.New(db, sqlds.Config{
		Table:         cfg.Table,
		Query:         cfg.Query,
		Columns:       cfg.Columns,
		PartitionSize: cfg.PartitionSize,
		QuoteIdent:    func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` },
	}), nil
}

func init() {
	dataset.Register("sqlite", func(ctx context.Context, cfg dataset.Config) (dataset.Dataset, error) {
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

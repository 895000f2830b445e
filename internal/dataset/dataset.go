// Package dataset contains the source-agnostic contracts for partitioned
// tabular data plus the factory that opens concrete sources by kind.
//
// The validation engine consumes only the two interfaces below; everything
// about where the rows come from (CSV file, Postgres, SQLite, MSSQL, memory)
// is isolated in subpackages that register themselves with the factory at
// init time. Import dataset/all (usually as a blank import in the wiring
// layer) to enable every built-in source.
package dataset

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ysing58/dataquality/pkg/records"
)

// Dataset is a partitioned collection of records. Partitions are disjoint and
// carry stable indexes; the engine may read them concurrently.
type Dataset interface {
	// Partitions returns the dataset's partitions. The slice order defines
	// each partition's index for record locators.
	Partitions(ctx context.Context) ([]Partition, error)
}

// Partition is one unit of records with a stable local iteration order.
type Partition interface {
	// Records calls fn for every record with its 0-based local row number.
	// Iteration stops at the first error, which is returned.
	Records(ctx context.Context, fn func(row int, rec records.Record) error) error
}

// Config carries everything a source constructor may need. Sources read only
// the fields relevant to their kind and ignore the rest.
type Config struct {
	// Kind selects the source implementation: "csv", "postgres", "sqlite",
	// "mssql".
	Kind string

	// File-based sources.
	Path      string
	Delimiter string
	HasHeader bool

	// Database-backed sources.
	DSN   string
	Table string
	Query string // optional; overrides Table when set

	// Columns optionally restricts the columns exposed to rules.
	Columns []string

	// PartitionSize is the number of rows per partition. Sources fall back to
	// DefaultPartitionSize when it is zero or negative.
	PartitionSize int
}

// DefaultPartitionSize is used when a Config leaves PartitionSize unset.
const DefaultPartitionSize = 10000

// Rows returns the effective partition size for cfg.
func (c Config) Rows() int {
	if c.PartitionSize > 0 {
		return c.PartitionSize
	}
	return DefaultPartitionSize
}

// Factory opens a dataset for a Config. Opening must not read the whole
// source; heavy work belongs in Partitions / Records.
type Factory func(ctx context.Context, cfg Config) (Dataset, error)

var (
	mu      sync.RWMutex
	sources = map[string]Factory{}
)

// Register installs a source factory under the given kind. Later
// registrations for the same kind replace earlier ones.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	sources[kind] = f
}

// Kinds returns the registered source kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(sources))
	for k := range sources {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens the dataset described by cfg using the registered factory for its
// kind.
func New(ctx context.Context, cfg Config) (Dataset, error) {
	mu.RLock()
	f, ok := sources[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("dataset: unknown source kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

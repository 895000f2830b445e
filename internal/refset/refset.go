// Package refset materializes reference datasets for referential-integrity
// rules. A reference set is one dataset column turned into an exact hash set
// so every partition can answer Contains(key) in O(1) amortized time; how the
// set reaches workers (broadcast, join) is the substrate's concern, the
// engine only defines the lookup contract.
package refset

import (
	"context"
	"errors"
	"fmt"

	"github.com/ysing58/dataquality/internal/dataset"
	"github.com/ysing58/dataquality/pkg/records"
)

// ErrReferenceUnavailable marks a reference dataset that could not be
// resolved. It is fatal for the run: evaluating a reference rule without its
// set would silently pass or fail every record.
var ErrReferenceUnavailable = errors.New("reference set unavailable")

// Set is a materialized reference set: the distinct, non-null values of one
// key column. Safe for concurrent reads once built.
type Set struct {
	name string
	keys map[string]struct{}
}

// Contains reports whether key exists in the set. It implements the lookup
// contract reference rules call per record.
func (s *Set) Contains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of distinct keys.
func (s *Set) Len() int { return len(s.keys) }

// Name returns the reference set's registered name.
func (s *Set) Name() string { return s.name }

// Materialize reads the key column of every partition of ds into a Set. Null
// keys are skipped. Any substrate failure is wrapped in
// ErrReferenceUnavailable.
func Materialize(ctx context.Context, name string, ds dataset.Dataset, column string) (*Set, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: %q has no dataset", ErrReferenceUnavailable, name)
	}
	parts, err := ds.Partitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrReferenceUnavailable, name, err)
	}

	s := &Set{name: name, keys: make(map[string]struct{})}
	for _, p := range parts {
		err := p.Records(ctx, func(_ int, rec records.Record) error {
			if rec.IsNull(column) {
				return nil
			}
			s.keys[records.Text(rec[column])] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrReferenceUnavailable, name, err)
		}
	}
	return s, nil
}

// Registry maps reference-set names to materialized sets.
type Registry map[string]*Set

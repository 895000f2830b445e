package dataset

import (
	"context"

	"github.com/ysing58/dataquality/pkg/records"
)

// Memory is an in-memory Dataset: a slice of pre-built partitions. It is the
// substrate used by tests and by callers that already hold their rows.
type Memory struct {
	parts [][]records.Record
}

// NewMemory builds a Memory dataset from explicit partitions, preserving
// their order and the record order within each.
func NewMemory(parts ...[]records.Record) *Memory {
	return &Memory{parts: parts}
}

// Chunk slices a flat record list into partitions of at most size rows.
func Chunk(recs []records.Record, size int) *Memory {
	if size <= 0 {
		size = DefaultPartitionSize
	}
	var parts [][]records.Record
	for len(recs) > 0 {
		n := min(size, len(recs))
		parts = append(parts, recs[:n])
		recs = recs[n:]
	}
	return NewMemory(parts...)
}

// Partitions implements Dataset.
func (m *Memory) Partitions(ctx context.Context) ([]Partition, error) {
	out := make([]Partition, len(m.parts))
	for i, p := range m.parts {
		out[i] = memoryPartition(p)
	}
	return out, nil
}

type memoryPartition []records.Record

func (p memoryPartition) Records(ctx context.Context, fn func(int, records.Record) error) error {
	for i, rec := range p {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i, rec); err != nil {
			return err
		}
	}
	return nil
}

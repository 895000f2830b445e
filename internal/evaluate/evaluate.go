// Package evaluate applies a compiled rule set to one dataset partition.
//
// This is the map stage of the engine: pure, parallelizable, and free of any
// cross-partition communication. Each invocation owns its PartialResult
// exclusively until it hands it to the aggregator.
package evaluate

import (
	"context"

	"github.com/zeebo/xxh3"

	"github.com/ysing58/dataquality/internal/dataset"
	"github.com/ysing58/dataquality/internal/rule"
	"github.com/ysing58/dataquality/pkg/records"
)

// DefaultSampleCapacity bounds the failing-outcome sample per rule when the
// caller does not configure one.
const DefaultSampleCapacity = 100

// Counts are the per-rule outcome tallies for one partition. Errored counts
// rule-evaluation errors, which are tracked apart from data-quality failures.
type Counts struct {
	Passed  int64
	Failed  int64
	Skipped int64
	Errored int64
}

// Total returns the number of records the rule saw, in any category.
func (c Counts) Total() int64 { return c.Passed + c.Failed + c.Skipped + c.Errored }

// KeyObservation records the local occurrences of one uniqueness key. The map
// holding observations is keyed by the key's 64-bit xxh3 digest; the original
// key is kept on the observation so digest collisions chain instead of
// merging distinct keys.
type KeyObservation struct {
	Key   string
	Count int64
	// First is the first-seen outcome for this key in this partition, used to
	// build the failure sample when the key turns out duplicated globally.
	First rule.Outcome

	next *KeyObservation
}

// KeyMap counts uniqueness keys for one rule within one partition.
type KeyMap map[uint64]*KeyObservation

// Observe adds one occurrence of key, creating the observation with first on
// first sight.
func (m KeyMap) Observe(key string, first rule.Outcome) {
	h := xxh3.HashString(key)
	for obs := m[h]; obs != nil; obs = obs.next {
		if obs.Key == key {
			obs.Count++
			return
		}
	}
	m[h] = &KeyObservation{Key: key, Count: 1, First: first, next: m[h]}
}

// Walk visits every observation in the map, chains included.
func (m KeyMap) Walk(fn func(hash uint64, obs *KeyObservation)) {
	for h, obs := range m {
		for ; obs != nil; obs = obs.next {
			fn(h, obs)
		}
	}
}

// PartialResult is the outcome of evaluating a rule set over one partition.
// Maps are keyed by rule name.
//
// For set-scoped rules the Passed/Failed counts cover only records resolved
// locally (null keys, per policy); keyed records sit in Keys until the
// aggregator's global pass classifies them.
type PartialResult struct {
	Partition int
	Records   int64

	Counts map[string]*Counts
	// Samples holds failing outcomes, capped at Capacity per rule, in
	// partition-local first-seen order.
	Samples map[string][]rule.Outcome
	// ErrorSamples holds rule-evaluation-error outcomes under the same cap.
	ErrorSamples map[string][]rule.Outcome
	// Keys holds uniqueness observations for set-scoped rules.
	Keys map[string]KeyMap

	Capacity int
}

// NewPartialResult returns an empty result for the given partition index.
func NewPartialResult(partition, capacity int) *PartialResult {
	if capacity <= 0 {
		capacity = DefaultSampleCapacity
	}
	return &PartialResult{
		Partition:    partition,
		Counts:       make(map[string]*Counts),
		Samples:      make(map[string][]rule.Outcome),
		ErrorSamples: make(map[string][]rule.Outcome),
		Keys:         make(map[string]KeyMap),
		Capacity:     capacity,
	}
}

func (pr *PartialResult) counts(name string) *Counts {
	c := pr.Counts[name]
	if c == nil {
		c = &Counts{}
		pr.Counts[name] = c
	}
	return c
}

func (pr *PartialResult) keys(name string) KeyMap {
	m := pr.Keys[name]
	if m == nil {
		m = make(KeyMap)
		pr.Keys[name] = m
	}
	return m
}

// Tally folds one outcome into the result, sampling failures and errors up to
// the capacity (first-seen kept).
func (pr *PartialResult) Tally(out rule.Outcome) {
	c := pr.counts(out.Rule)
	switch out.Status {
	case rule.StatusPassed:
		c.Passed++
	case rule.StatusFailed:
		c.Failed++
		if len(pr.Samples[out.Rule]) < pr.Capacity {
			pr.Samples[out.Rule] = append(pr.Samples[out.Rule], out)
		}
	case rule.StatusSkipped:
		c.Skipped++
	case rule.StatusErrored:
		c.Errored++
		if len(pr.ErrorSamples[out.Rule]) < pr.Capacity {
			pr.ErrorSamples[out.Rule] = append(pr.ErrorSamples[out.Rule], out)
		}
	}
}

// Partition evaluates every rule against every record of part. Rules are
// independent: an errored outcome for one rule does not stop the others, and
// never aborts the partition. The only returned errors are substrate
// iteration failures and context cancellation.
func Partition(ctx context.Context, part dataset.Partition, index int, rules []*rule.Compiled, capacity int) (*PartialResult, error) {
	pr := NewPartialResult(index, capacity)

	err := part.Records(ctx, func(row int, rec records.Record) error {
		pr.Records++
		id := rule.RecordID{Partition: index, Row: row}
		for _, c := range rules {
			if c.Rule.Kind.SetScoped() {
				key, ok := c.KeyOf(rec)
				if !ok {
					pr.Tally(c.Evaluate(rec, id))
					continue
				}
				first := rule.Outcome{
					Rule:     c.Rule.Name,
					Record:   id,
					Status:   rule.StatusFailed,
					Reason:   rule.ReasonDuplicate,
					Observed: c.ObservedKey(rec),
				}
				pr.keys(c.Rule.Name).Observe(key, first)
				continue
			}
			pr.Tally(c.Evaluate(rec, id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pr, nil
}

// Package aggregate merges per-partition results into dataset-wide metrics.
//
// The merge operator is commutative and associative: counts add, samples
// merge as the min-capacity prefix of the union ordered by record locator,
// and uniqueness keys union with their occurrence counts. Sequential folds,
// tree reductions, and any arrival order therefore produce byte-identical
// results, which is the property distributed execution leans on.
package aggregate

import (
	"github.com/ysing58/dataquality/internal/evaluate"
	"github.com/ysing58/dataquality/internal/rule"
)

// keyAgg is the merged, cross-partition view of one uniqueness key. Chained
// on digest like evaluate.KeyObservation.
type keyAgg struct {
	key   string
	count int64
	// firsts holds each partition's first-seen outcome for the key, sorted by
	// record locator and capped at the sample capacity. Only the smallest
	// capacity-many locators can ever reach the final sample, so the cap
	// loses nothing.
	firsts []rule.Outcome

	next *keyAgg
}

type keyAggMap map[uint64]*keyAgg

func (m keyAggMap) get(hash uint64, key string) *keyAgg {
	for a := m[hash]; a != nil; a = a.next {
		if a.key == key {
			return a
		}
	}
	a := &keyAgg{key: key, next: m[hash]}
	m[hash] = a
	return a
}

// Result is the running accumulator of a fold over PartialResults. Build one
// per partial with From and combine with Merge; call Resolve once at the end
// to fold uniqueness observations into ordinary counts and samples.
type Result struct {
	Partitions int
	Records    int64

	Counts       map[string]*evaluate.Counts
	Samples      map[string][]rule.Outcome
	ErrorSamples map[string][]rule.Outcome

	keys     map[string]keyAggMap
	Capacity int
}

// From lifts one partition's result into a mergeable Result. The partial is
// not retained.
func From(pr *evaluate.PartialResult) *Result {
	r := &Result{
		Partitions:   1,
		Records:      pr.Records,
		Counts:       make(map[string]*evaluate.Counts, len(pr.Counts)),
		Samples:      make(map[string][]rule.Outcome, len(pr.Samples)),
		ErrorSamples: make(map[string][]rule.Outcome, len(pr.ErrorSamples)),
		keys:         make(map[string]keyAggMap, len(pr.Keys)),
		Capacity:     pr.Capacity,
	}
	for name, c := range pr.Counts {
		cc := *c
		r.Counts[name] = &cc
	}
	for name, s := range pr.Samples {
		r.Samples[name] = append([]rule.Outcome(nil), s...)
	}
	for name, s := range pr.ErrorSamples {
		r.ErrorSamples[name] = append([]rule.Outcome(nil), s...)
	}
	for name, km := range pr.Keys {
		am := make(keyAggMap, len(km))
		km.Walk(func(hash uint64, obs *evaluate.KeyObservation) {
			a := am.get(hash, obs.Key)
			a.count += obs.Count
			a.firsts = append(a.firsts, obs.First)
		})
		r.keys[name] = am
	}
	return r
}

// Merge absorbs b into a and returns a. Neither operand may be used again
// except as Merge inputs; the fold owns them.
func Merge(a, b *Result) *Result {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	a.Partitions += b.Partitions
	a.Records += b.Records

	for name, bc := range b.Counts {
		if ac := a.Counts[name]; ac != nil {
			ac.Passed += bc.Passed
			ac.Failed += bc.Failed
			ac.Skipped += bc.Skipped
			ac.Errored += bc.Errored
		} else {
			cc := *bc
			a.Counts[name] = &cc
		}
	}
	for name, bs := range b.Samples {
		a.Samples[name] = mergeSamples(a.Samples[name], bs, a.Capacity)
	}
	for name, bs := range b.ErrorSamples {
		a.ErrorSamples[name] = mergeSamples(a.ErrorSamples[name], bs, a.Capacity)
	}
	for name, bm := range b.keys {
		am := a.keys[name]
		if am == nil {
			a.keys[name] = bm
			continue
		}
		for hash, bagg := range bm {
			for ; bagg != nil; bagg = bagg.next {
				aagg := am.get(hash, bagg.key)
				aagg.count += bagg.count
				aagg.firsts = mergeSamples(aagg.firsts, bagg.firsts, a.Capacity)
			}
		}
	}
	return a
}

// Resolve performs the global pass for set-scoped rules: every key whose
// dataset-wide count exceeds one fails all of its occurrences, everything
// else passes. Counts and samples are adjusted in place and the key maps are
// released. Resolve is idempotent.
func (r *Result) Resolve() {
	for name, am := range r.keys {
		c := r.Counts[name]
		if c == nil {
			c = &evaluate.Counts{}
			r.Counts[name] = c
		}
		var candidates []rule.Outcome
		for _, agg := range am {
			for ; agg != nil; agg = agg.next {
				if agg.count > 1 {
					c.Failed += agg.count
					candidates = mergeSamples(candidates, agg.firsts, r.Capacity)
				} else {
					c.Passed += agg.count
				}
			}
		}
		if len(candidates) > 0 {
			r.Samples[name] = mergeSamples(r.Samples[name], candidates, r.Capacity)
		}
	}
	r.keys = map[string]keyAggMap{}
}

// mergeSamples merges two locator-sorted outcome slices, keeping the first
// capacity entries. Stable across merge order: the result is always the
// capacity smallest locators of the union.
func mergeSamples(a, b []rule.Outcome, capacity int) []rule.Outcome {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 && len(b) <= capacity {
		return b
	}
	out := make([]rule.Outcome, 0, min(len(a)+len(b), capacity))
	i, j := 0, 0
	for len(out) < capacity && (i < len(a) || j < len(b)) {
		switch {
		case i == len(a):
			out = append(out, b[j])
			j++
		case j == len(b):
			out = append(out, a[i])
			i++
		case b[j].Record.Less(a[i].Record):
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
		}
	}
	return out
}

// Package runner orchestrates a validation run end to end: static rule-set
// checks, reference-set resolution, parallel partition evaluation, the
// aggregation fold, and report construction.
//
// Error policy follows the engine taxonomy: configuration and
// reference-resolution problems abort before any partition is read and never
// produce a Report; everything that happens per record or per rule is
// contained inside the evaluators and always yields a complete Report.
// Cancellation discards in-flight work; a partial Report is never exposed.
package runner

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ysing58/dataquality/internal/aggregate"
	"github.com/ysing58/dataquality/internal/dataset"
	"github.com/ysing58/dataquality/internal/evaluate"
	"github.com/ysing58/dataquality/internal/metrics"
	"github.com/ysing58/dataquality/internal/refset"
	"github.com/ysing58/dataquality/internal/report"
	"github.com/ysing58/dataquality/internal/rule"
	"github.com/ysing58/dataquality/internal/ruleset"
)

// Options tune a run. The zero value is usable.
type Options struct {
	// Job names the run for metrics labeling. Defaults to "dqcheck".
	Job string

	// SampleCapacity bounds the failing-outcome sample kept per rule.
	// Defaults to evaluate.DefaultSampleCapacity.
	SampleCapacity int

	// Parallelism caps concurrent partition evaluations. Defaults to
	// GOMAXPROCS.
	Parallelism int
}

func (o Options) job() string {
	if o.Job == "" {
		return "dqcheck"
	}
	return o.Job
}

func (o Options) parallelism() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// References supplies the datasets backing each reference set named by the
// rule set, keyed by reference name.
type References map[string]dataset.Dataset

// Run validates ds against rs and returns the Report. refs must contain a
// dataset for every reference set the rules name; the key column comes from
// the rule's RefColumn.
func Run(ctx context.Context, ds dataset.Dataset, rs *ruleset.RuleSet, refs References, opts Options) (*report.Report, error) {
	job := opts.job()

	// Resolve reference sets before anything touches data. A missing set is
	// fatal across all partitions.
	start := time.Now()
	lookups, err := resolveReferences(ctx, rs, refs)
	metrics.RecordStage(job, "resolve", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	// Compile every rule up front so pattern and expression defects surface
	// as configuration errors, not mid-run failures.
	compiled := make([]*rule.Compiled, 0, rs.Len())
	for _, r := range rs.Rules() {
		c, err := rule.Compile(r, lookups)
		if err != nil {
			return nil, fmt.Errorf("compile rule set: %w", err)
		}
		compiled = append(compiled, c)
	}

	parts, err := ds.Partitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	// Map stage: evaluate partitions in parallel. Results land in an indexed
	// slice, so workers share nothing.
	start = time.Now()
	partials := make([]*evaluate.PartialResult, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.parallelism())
	for i, p := range parts {
		g.Go(func() error {
			pr, err := evaluate.Partition(gctx, p, i, compiled, opts.SampleCapacity)
			if err != nil {
				return fmt.Errorf("partition %d: %w", i, err)
			}
			partials[i] = pr
			return nil
		})
	}
	err = g.Wait()
	metrics.RecordStage(job, "evaluate", err, time.Since(start))
	if err != nil {
		return nil, err
	}

	// Reduce stage: a pure fold. Merge is commutative and associative, so
	// this sequential fold matches any tree reduction a substrate might run.
	start = time.Now()
	var agg *aggregate.Result
	for _, pr := range partials {
		agg = aggregate.Merge(agg, aggregate.From(pr))
	}
	if agg != nil {
		agg.Resolve()
	}
	metrics.RecordStage(job, "aggregate", nil, time.Since(start))

	rep := report.Build(rs, agg)

	metrics.RecordRecords(job, rep.Records)
	for _, m := range rep.Rules {
		metrics.RecordRule(job, m.Name, m.Passed, m.Failed, m.Errored)
	}
	return rep, nil
}

// resolveReferences materializes every reference set the rule set names.
func resolveReferences(ctx context.Context, rs *ruleset.RuleSet, refs References) (map[string]rule.ReferenceLookup, error) {
	lookups := make(map[string]rule.ReferenceLookup)
	for _, r := range rs.Rules() {
		if r.Kind != rule.KindReference {
			continue
		}
		if _, done := lookups[r.Reference]; done {
			continue
		}
		ds, ok := refs[r.Reference]
		if !ok {
			return nil, fmt.Errorf("%w: rule %q needs reference set %q", refset.ErrReferenceUnavailable, r.Name, r.Reference)
		}
		set, err := refset.Materialize(ctx, r.Reference, ds, r.RefColumn)
		if err != nil {
			return nil, err
		}
		lookups[r.Reference] = set
	}
	return lookups, nil
}

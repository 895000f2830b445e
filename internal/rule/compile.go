package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ysing58/dataquality/pkg/records"
)

// ReferenceLookup is the resolver contract a reference rule calls per record:
// O(1) amortized membership on the reference set's key column. How the set is
// materialized (broadcast, join) is the substrate's business.
type ReferenceLookup interface {
	Contains(key string) bool
}

// Compiled is a rule bound to a ready-to-run evaluator. Compilation happens
// once per run, before any partition is touched, so pattern and expression
// errors surface as configuration errors rather than mid-run surprises.
type Compiled struct {
	Rule Rule

	eval func(rec records.Record, id RecordID) Outcome
}

// Compile binds r to its evaluator. refs supplies reference sets by name for
// reference rules; a missing or nil entry is reported by the caller as a
// reference-resolution failure, not here.
func Compile(r Rule, refs map[string]ReferenceLookup) (*Compiled, error) {
	c := &Compiled{Rule: r}
	policy := r.EffectiveNullPolicy()

	switch r.Kind {
	case KindNotNull:
		cols := r.Columns
		c.eval = func(rec records.Record, id RecordID) Outcome {
			for _, col := range cols {
				if rec.IsNull(col) {
					return failed(r.Name, id, ReasonNull, rec[col])
				}
			}
			return passed(r.Name, id)
		}

	case KindRange:
		col := r.Column()
		min, max := r.Min, r.Max
		minExcl, maxExcl := r.MinExclusive, r.MaxExclusive
		c.eval = func(rec records.Record, id RecordID) Outcome {
			if rec.IsNull(col) {
				return nullOutcome(r.Name, id, policy)
			}
			f, ok := rec.Float(col)
			if !ok {
				return failed(r.Name, id, ReasonNotComparable, rec[col])
			}
			if min != nil && (f < *min || (minExcl && f == *min)) {
				return failed(r.Name, id, ReasonOutOfRange, f)
			}
			if max != nil && (f > *max || (maxExcl && f == *max)) {
				return failed(r.Name, id, ReasonOutOfRange, f)
			}
			return passed(r.Name, id)
		}

	case KindRegex:
		// Full-match semantics regardless of how the pattern is anchored.
		re, err := regexp.Compile(`\A(?:` + r.Pattern + `)\z`)
		if err != nil {
			return nil, fmt.Errorf("rule %q: compile pattern: %w", r.Name, err)
		}
		col := r.Column()
		c.eval = func(rec records.Record, id RecordID) Outcome {
			if rec.IsNull(col) {
				return nullOutcome(r.Name, id, policy)
			}
			s, ok := rec.String(col)
			if !ok {
				return failed(r.Name, id, ReasonNotString, rec[col])
			}
			if !re.MatchString(s) {
				return failed(r.Name, id, ReasonNoMatch, s)
			}
			return passed(r.Name, id)
		}

	case KindReference:
		lookup := refs[r.Reference]
		if lookup == nil {
			return nil, fmt.Errorf("rule %q: reference set %q is not resolved", r.Name, r.Reference)
		}
		col := r.Column()
		c.eval = func(rec records.Record, id RecordID) Outcome {
			if rec.IsNull(col) {
				return nullOutcome(r.Name, id, policy)
			}
			key := records.Text(rec[col])
			if !lookup.Contains(key) {
				return failed(r.Name, id, ReasonUnknownKey, key)
			}
			return passed(r.Name, id)
		}

	case KindCustom:
		if r.Func != nil {
			fn := r.Func
			c.eval = func(rec records.Record, id RecordID) Outcome {
				ok, err := fn(rec)
				if err != nil {
					return errored(r.Name, id, fmt.Sprintf("predicate error: %v", err))
				}
				if !ok {
					return failed(r.Name, id, ReasonPredicate, nil)
				}
				return passed(r.Name, id)
			}
			break
		}
		eval, err := compileCustom(r)
		if err != nil {
			return nil, err
		}
		c.eval = eval

	case KindUnique:
		// Set-scoped: per-record verdicts come from the aggregator's global
		// key pass. Locally we only classify null keys per policy; Evaluate
		// reports everything else as passed provisionally so callers that do
		// not run the global pass still get exact totals.
		c.eval = func(rec records.Record, id RecordID) Outcome {
			if _, ok := c.KeyOf(rec); !ok {
				return nullOutcome(r.Name, id, policy)
			}
			return passed(r.Name, id)
		}

	default:
		return nil, fmt.Errorf("rule %q: unknown kind %q", r.Name, r.Kind)
	}

	return c, nil
}

// Evaluate applies the rule to one record. A panicking evaluator (a broken
// custom predicate, typically) is contained and reported as an errored
// outcome so one bad rule cannot sink the others.
func (c *Compiled) Evaluate(rec records.Record, id RecordID) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = errored(c.Rule.Name, id, fmt.Sprintf("rule evaluation panic: %v", p))
		}
	}()
	return c.eval(rec, id)
}

// KeyOf builds the uniqueness key for a record: the target column values
// joined with an unlikely separator. ok is false when any key column is null;
// the rule's null policy decides what happens to such records.
func (c *Compiled) KeyOf(rec records.Record) (string, bool) {
	var b strings.Builder
	for i, col := range c.Rule.Columns {
		if rec.IsNull(col) {
			return "", false
		}
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(records.Text(rec[col]))
	}
	return b.String(), true
}

// ObservedKey renders the key columns for failure diagnostics.
func (c *Compiled) ObservedKey(rec records.Record) string {
	parts := make([]string, 0, len(c.Rule.Columns))
	for _, col := range c.Rule.Columns {
		parts = append(parts, records.Text(rec[col]))
	}
	return strings.Join(parts, ",")
}

func nullOutcome(name string, id RecordID, policy NullPolicy) Outcome {
	switch policy {
	case NullPass:
		return passed(name, id)
	case NullSkip:
		return skipped(name, id)
	default:
		return failed(name, id, ReasonNull, nil)
	}
}

// Package rule defines the validation rule model and the evaluators for the
// built-in rule kinds. A rule is a flat, self-contained predicate over one
// record (or, for set-scoped kinds, over key observations collected across
// partitions); there is no hierarchy between kinds.
package rule

import "strings"

// Kind selects the rule implementation.
type Kind string

const (
	KindNotNull   Kind = "not_null"
	KindUnique    Kind = "unique"
	KindRange     Kind = "range"
	KindRegex     Kind = "regex"
	KindReference Kind = "reference"
	KindCustom    Kind = "custom"
)

// Kinds lists every built-in kind, in the order they are documented.
var Kinds = []Kind{KindNotNull, KindUnique, KindRange, KindRegex, KindReference, KindCustom}

// Known reports whether k names a built-in kind.
func (k Kind) Known() bool {
	for _, kk := range Kinds {
		if k == kk {
			return true
		}
	}
	return false
}

// SetScoped reports whether the kind needs visibility beyond one record.
// Set-scoped rules are finished by the aggregator's global key pass.
func (k Kind) SetScoped() bool { return k == KindUnique }

// Severity classifies how a rule's failures affect the run verdict.
type Severity string

const (
	// SeverityError failures make the whole run fail.
	SeverityError Severity = "error"
	// SeverityWarning failures are reported but do not fail the run.
	SeverityWarning Severity = "warning"
)

// NullPolicy controls how a rule treats null values in its target columns.
// NotNull ignores the policy; every other kind consults it before comparing.
type NullPolicy string

const (
	// NullFail counts a null value as a data-quality failure.
	NullFail NullPolicy = "fail"
	// NullPass counts a null value as passing.
	NullPass NullPolicy = "pass"
	// NullSkip excludes the record from the rule's counts entirely.
	NullSkip NullPolicy = "skip"
)

// DefaultNullPolicy returns the per-kind default used when a rule does not
// set a policy. Range and Regex fail nulls (a null age is outside any range;
// a null string matches no pattern). Unique skips nulls so absent keys do not
// collide with each other. Reference passes nulls, matching SQL foreign-key
// semantics.
func DefaultNullPolicy(k Kind) NullPolicy {
	switch k {
	case KindUnique:
		return NullSkip
	case KindReference:
		return NullPass
	default:
		return NullFail
	}
}

// Rule is the declarative form of one validation rule, as loaded from a rule
// spec. It is inert until compiled; see Compile.
type Rule struct {
	// Name identifies the rule. Names are unique within a rule set.
	Name string

	// Description is optional free text surfaced in reports.
	Description string

	Kind     Kind
	Severity Severity

	// Columns are the target columns, in order. Most kinds use one column;
	// NotNull and Unique accept several (all must be present / the tuple must
	// be unique).
	Columns []string

	// NullPolicy overrides the kind default when non-empty.
	NullPolicy NullPolicy

	// Range parameters. A nil bound is open on that side; at least one bound
	// is required. Bounds are inclusive unless the matching Exclusive flag is
	// set.
	Min, Max                   *float64
	MinExclusive, MaxExclusive bool

	// Pattern is the regular expression for Regex rules, applied with
	// full-match semantics.
	Pattern string

	// Reference names the reference set for Reference rules; RefColumn is the
	// key column inside that set.
	Reference string
	RefColumn string

	// Expression is the CEL predicate for Custom rules. It is evaluated with
	// a single variable, "record", bound to the row.
	Expression string

	// Func is a programmatic alternative to Expression for Custom rules,
	// for library callers. It takes precedence over Expression when set.
	Func Predicate
}

// Predicate is a user-supplied row check: true means the record passes. A
// returned error is tallied as a rule-evaluation error for that record, not
// a data-quality failure.
type Predicate func(rec map[string]any) (bool, error)

// Column returns the first target column. Valid rules of every kind except
// Custom have at least one.
func (r Rule) Column() string {
	if len(r.Columns) == 0 {
		return ""
	}
	return r.Columns[0]
}

// EffectiveNullPolicy resolves the rule's policy against the kind default.
func (r Rule) EffectiveNullPolicy() NullPolicy {
	if r.NullPolicy != "" {
		return r.NullPolicy
	}
	return DefaultNullPolicy(r.Kind)
}

// Label is a short human-readable identity used in log lines, e.g.
// "range(age)".
func (r Rule) Label() string {
	return string(r.Kind) + "(" + strings.Join(r.Columns, ",") + ")"
}

// Package ruleset holds an ordered collection of validation rules and the
// static validation that runs before any data is touched.
//
// Validation is a linter over the declarative rules: it returns a list of
// findings rather than stopping at the first problem, so a CLI or test can
// surface every defect in one pass.
package ruleset

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ysing58/dataquality/internal/rule"
)

// IssueSeverity represents the severity of a rule-set finding.
type IssueSeverity string

const (
	// SeverityError indicates a finding that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding surfaced to users without blocking
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a rule set.
//
// Path is a dotted path into the rule set (e.g. "rules[1].pattern").
// Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ConfigError wraps the error-severity findings that aborted a run.
type ConfigError struct {
	Issues []Issue
}

func (e *ConfigError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, iss := range e.Issues {
		msgs = append(msgs, iss.Error())
	}
	return "invalid rule set: " + strings.Join(msgs, "; ")
}

// RuleSet is an ordered collection of rules with unique names. Construct with
// New, which rejects malformed sets eagerly.
type RuleSet struct {
	rules  []rule.Rule
	byName map[string]int
}

// New builds a RuleSet, running Validate first. Error-severity findings make
// construction fail with a *ConfigError; warnings are discarded here (use
// Validate directly to see them).
func New(rules []rule.Rule) (*RuleSet, error) {
	var errs []Issue
	for _, iss := range Validate(rules) {
		if iss.Severity == SeverityError {
			errs = append(errs, iss)
		}
	}
	if len(errs) > 0 {
		return nil, &ConfigError{Issues: errs}
	}

	byName := make(map[string]int, len(rules))
	for i, r := range rules {
		byName[r.Name] = i
	}
	return &RuleSet{rules: rules, byName: byName}, nil
}

// Rules returns the rules in declaration order.
func (s *RuleSet) Rules() []rule.Rule { return s.rules }

// Len returns the number of rules.
func (s *RuleSet) Len() int { return len(s.rules) }

// Get returns the rule with the given name.
func (s *RuleSet) Get(name string) (rule.Rule, bool) {
	i, ok := s.byName[name]
	if !ok {
		return rule.Rule{}, false
	}
	return s.rules[i], true
}

// ReferencedSets returns the distinct reference-set names used by reference
// rules, in first-use order.
func (s *RuleSet) ReferencedSets() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range s.rules {
		if r.Kind != rule.KindReference {
			continue
		}
		if _, ok := seen[r.Reference]; ok {
			continue
		}
		seen[r.Reference] = struct{}{}
		names = append(names, r.Reference)
	}
	return names
}

// Validate performs static validation of a rule slice. It does not mutate the
// rules; it returns a slice of Issue values. Callers decide whether warnings
// are fatal.
func Validate(rules []rule.Rule) []Issue {
	var issues []Issue

	if len(rules) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "rules",
			Message:  "rule set is empty; every dataset will pass",
		})
	}

	seen := make(map[string]int, len(rules))
	for i, r := range rules {
		path := fmt.Sprintf("rules[%d]", i)

		name := strings.TrimSpace(r.Name)
		if name == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  "rule name must not be empty",
			})
		} else if prev, dup := seen[name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("duplicate rule name %q (first declared at rules[%d])", name, prev),
			})
		} else {
			seen[name] = i
		}

		if !r.Kind.Known() {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".kind",
				Message:  fmt.Sprintf("unknown rule kind %q", r.Kind),
			})
			continue
		}

		if r.Severity != "" && r.Severity != rule.SeverityError && r.Severity != rule.SeverityWarning {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".severity",
				Message:  fmt.Sprintf("unknown severity %q (want %q or %q)", r.Severity, rule.SeverityError, rule.SeverityWarning),
			})
		}
		if r.NullPolicy != "" && r.NullPolicy != rule.NullFail && r.NullPolicy != rule.NullPass && r.NullPolicy != rule.NullSkip {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".null_policy",
				Message:  fmt.Sprintf("unknown null policy %q", r.NullPolicy),
			})
		}

		issues = append(issues, validateKind(path, r)...)
	}

	return issues
}

// validateKind checks the kind-specific parameters of a single rule.
func validateKind(path string, r rule.Rule) []Issue {
	var issues []Issue

	needColumns := r.Kind != rule.KindCustom
	if needColumns && len(r.Columns) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".columns",
			Message:  fmt.Sprintf("%s rules require at least one target column", r.Kind),
		})
	}

	switch r.Kind {
	case rule.KindRange:
		if len(r.Columns) > 1 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".columns",
				Message:  "range rules use only the first target column",
			})
		}
		if r.Min == nil && r.Max == nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".min",
				Message:  "range rules require at least one of min and max",
			})
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".min",
				Message:  fmt.Sprintf("min %v is greater than max %v", *r.Min, *r.Max),
			})
		}

	case rule.KindRegex:
		if strings.TrimSpace(r.Pattern) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".pattern",
				Message:  "regex rules require a pattern",
			})
		} else if _, err := regexp.Compile(r.Pattern); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".pattern",
				Message:  fmt.Sprintf("invalid pattern: %v", err),
			})
		}

	case rule.KindReference:
		if strings.TrimSpace(r.Reference) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".reference",
				Message:  "reference rules require a reference set name",
			})
		}
		if strings.TrimSpace(r.RefColumn) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".ref_column",
				Message:  "reference rules require the reference set's key column",
			})
		}

	case rule.KindCustom:
		if strings.TrimSpace(r.Expression) == "" && r.Func == nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".expression",
				Message:  "custom rules require an expression or a predicate func",
			})
		}
	}

	return issues
}

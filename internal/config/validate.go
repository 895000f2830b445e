// This file adds a lightweight linter for Spec values. It performs static
// checks over a decoded Spec and returns a list of findings (errors and
// warnings) that the CLI and tests can surface in one pass.
package config

import (
	"fmt"
	"strings"

	"github.com/ysing58/dataquality/internal/dataset"
	"github.com/ysing58/dataquality/internal/rule"
	"github.com/ysing58/dataquality/internal/ruleset"
)

// knownSourceKinds are the source kinds shipped in internal/dataset, listed
// statically so the linter can name-check them without importing the drivers.
// Kinds registered with the dataset factory count as known too; anything else
// is a warning, not an error, for forward compatibility.
var knownSourceKinds = map[string]struct{}{
	"csv": {}, "postgres": {}, "sqlite": {}, "mssql": {},
}

func knownKind(kind string) bool {
	if _, ok := knownSourceKinds[kind]; ok {
		return true
	}
	for _, k := range dataset.Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// Validate performs static validation of a Spec. It does not mutate the
// spec; it returns a slice of findings. Rule findings come from
// ruleset.Validate and carry "rules[i]" paths; this function adds the
// dataset- and reference-level checks around them.
func Validate(s Spec) []ruleset.Issue {
	var issues []ruleset.Issue

	if strings.TrimSpace(s.Job) == "" {
		issues = append(issues, ruleset.Issue{
			Severity: ruleset.SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics will be labeled with the default job name",
		})
	}

	issues = append(issues, validateSource("dataset", s.Dataset)...)

	for name, src := range s.References {
		issues = append(issues, validateSource("references."+name, src)...)
	}

	if s.SampleCapacity < 0 {
		issues = append(issues, ruleset.Issue{
			Severity: ruleset.SeverityError,
			Path:     "sample_capacity",
			Message:  "sample_capacity must not be negative",
		})
	}

	rules := s.RuleList()
	issues = append(issues, ruleset.Validate(rules)...)

	// Cross-check: every reference rule must name a declared reference set.
	for i, r := range rules {
		if r.Kind != rule.KindReference || r.Reference == "" {
			continue
		}
		if _, ok := s.References[r.Reference]; !ok {
			issues = append(issues, ruleset.Issue{
				Severity: ruleset.SeverityError,
				Path:     fmt.Sprintf("rules[%d].reference", i),
				Message:  fmt.Sprintf("reference set %q is not declared under references", r.Reference),
			})
		}
	}

	return issues
}

// validateSource checks one Source block.
func validateSource(path string, src Source) []ruleset.Issue {
	var issues []ruleset.Issue

	kind := strings.TrimSpace(src.Kind)
	if kind == "" {
		issues = append(issues, ruleset.Issue{
			Severity: ruleset.SeverityError,
			Path:     path + ".kind",
			Message:  "source kind must not be empty",
		})
		return issues
	}
	if !knownKind(kind) {
		issues = append(issues, ruleset.Issue{
			Severity: ruleset.SeverityWarning,
			Path:     path + ".kind",
			Message:  fmt.Sprintf("unknown source kind %q; expecting an externally registered source", kind),
		})
		return issues
	}

	switch kind {
	case "csv":
		if strings.TrimSpace(src.Path) == "" {
			issues = append(issues, ruleset.Issue{
				Severity: ruleset.SeverityError,
				Path:     path + ".path",
				Message:  "csv sources require a path",
			})
		}
		if len(src.Delimiter) > 1 {
			issues = append(issues, ruleset.Issue{
				Severity: ruleset.SeverityError,
				Path:     path + ".delimiter",
				Message:  "delimiter must be a single character",
			})
		}
	case "postgres", "sqlite", "mssql":
		if strings.TrimSpace(src.DSN) == "" {
			issues = append(issues, ruleset.Issue{
				Severity: ruleset.SeverityError,
				Path:     path + ".dsn",
				Message:  kind + " sources require a dsn",
			})
		}
		if strings.TrimSpace(src.Table) == "" && strings.TrimSpace(src.Query) == "" {
			issues = append(issues, ruleset.Issue{
				Severity: ruleset.SeverityError,
				Path:     path + ".table",
				Message:  kind + " sources require a table or a query",
			})
		}
	}

	if src.PartitionSize < 0 {
		issues = append(issues, ruleset.Issue{
			Severity: ruleset.SeverityError,
			Path:     path + ".partition_size",
			Message:  "partition_size must not be negative",
		})
	}

	return issues
}

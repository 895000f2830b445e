package ruleset

import (
	"strings"
	"testing"

	"github.com/ysing58/dataquality/internal/rule"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func f64(v float64) *float64 { return &v }

/*
TestValidate_DuplicateNames verifies that two rules sharing a name produce a
SeverityError pointing at the second declaration.
*/
func TestValidate_DuplicateNames(t *testing.T) {
	issues := Validate([]rule.Rule{
		{Name: "check", Kind: rule.KindNotNull, Columns: []string{"a"}},
		{Name: "check", Kind: rule.KindNotNull, Columns: []string{"b"}},
	})

	if !hasIssue(t, issues, SeverityError, "rules[1].name", "duplicate rule name") {
		t.Fatalf("expected duplicate-name error; got issues: %+v", issues)
	}
}

/*
TestValidate_UnknownKind verifies that an unknown kind is a SeverityError and
that kind-specific checks are skipped for that rule.
*/
func TestValidate_UnknownKind(t *testing.T) {
	issues := Validate([]rule.Rule{
		{Name: "x", Kind: "fancy", Columns: []string{"a"}},
	})

	if !hasIssue(t, issues, SeverityError, "rules[0].kind", "unknown rule kind") {
		t.Fatalf("expected unknown-kind error; got issues: %+v", issues)
	}
}

/*
TestValidate_MissingParameters covers the kind-specific required parameters:
range bounds, regex pattern, reference set and key column, custom expression.
*/
func TestValidate_MissingParameters(t *testing.T) {
	issues := Validate([]rule.Rule{
		{Name: "r", Kind: rule.KindRange, Columns: []string{"a"}},
		{Name: "re", Kind: rule.KindRegex, Columns: []string{"a"}},
		{Name: "fk", Kind: rule.KindReference, Columns: []string{"a"}},
		{Name: "c", Kind: rule.KindCustom},
		{Name: "nn", Kind: rule.KindNotNull},
	})

	for _, want := range []struct{ path, msg string }{
		{"rules[0].min", "at least one of min and max"},
		{"rules[1].pattern", "require a pattern"},
		{"rules[2].reference", "reference set name"},
		{"rules[2].ref_column", "key column"},
		{"rules[3].expression", "expression or a predicate func"},
		{"rules[4].columns", "at least one target column"},
	} {
		if !hasIssue(t, issues, SeverityError, want.path, want.msg) {
			t.Errorf("expected error at %s containing %q; got issues: %+v", want.path, want.msg, issues)
		}
	}
}

/*
TestValidate_BadPattern verifies that a syntactically invalid regex is caught
statically, before any data is read.
*/
func TestValidate_BadPattern(t *testing.T) {
	issues := Validate([]rule.Rule{
		{Name: "re", Kind: rule.KindRegex, Columns: []string{"a"}, Pattern: "("},
	})

	if !hasIssue(t, issues, SeverityError, "rules[0].pattern", "invalid pattern") {
		t.Fatalf("expected invalid-pattern error; got issues: %+v", issues)
	}
}

/*
TestValidate_InvertedRange verifies min > max is rejected.
*/
func TestValidate_InvertedRange(t *testing.T) {
	issues := Validate([]rule.Rule{
		{Name: "r", Kind: rule.KindRange, Columns: []string{"a"}, Min: f64(10), Max: f64(1)},
	})

	if !hasIssue(t, issues, SeverityError, "rules[0].min", "greater than max") {
		t.Fatalf("expected inverted-range error; got issues: %+v", issues)
	}
}

/*
TestValidate_CleanSet verifies that a well-formed rule list produces no
errors, and that New succeeds for it.
*/
func TestValidate_CleanSet(t *testing.T) {
	rules := []rule.Rule{
		{Name: "nn", Kind: rule.KindNotNull, Columns: []string{"id"}},
		{Name: "uq", Kind: rule.KindUnique, Columns: []string{"id"}},
		{Name: "rng", Kind: rule.KindRange, Columns: []string{"age"}, Min: f64(0), Max: f64(120)},
		{Name: "re", Kind: rule.KindRegex, Columns: []string{"email"}, Pattern: `.+@.+`},
		{Name: "fk", Kind: rule.KindReference, Columns: []string{"cid"}, Reference: "customers", RefColumn: "id"},
		{Name: "cel", Kind: rule.KindCustom, Expression: "true"},
	}

	for _, iss := range Validate(rules) {
		if iss.Severity == SeverityError {
			t.Fatalf("unexpected error issue: %v", iss)
		}
	}

	rs, err := New(rules)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if rs.Len() != len(rules) {
		t.Fatalf("Len = %d, want %d", rs.Len(), len(rules))
	}
	if got := rs.ReferencedSets(); len(got) != 1 || got[0] != "customers" {
		t.Fatalf("ReferencedSets = %v", got)
	}
}

/*
TestNew_RejectsErrors verifies that New fails with a ConfigError carrying the
error-severity findings.
*/
func TestNew_RejectsErrors(t *testing.T) {
	_, err := New([]rule.Rule{
		{Name: "", Kind: rule.KindNotNull, Columns: []string{"a"}},
	})
	if err == nil {
		t.Fatal("expected error for empty rule name")
	}
	cfgErr, ok := err.(*ConfigError)
	if !ok {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if len(cfgErr.Issues) == 0 {
		t.Fatal("ConfigError carries no issues")
	}
}

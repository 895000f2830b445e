package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ysing58/dataquality/internal/dataset"
	"github.com/ysing58/dataquality/internal/rule"
	"github.com/ysing58/dataquality/internal/ruleset"
)

const sampleYAML = `
job: customers
dataset:
  kind: csv
  path: customers.csv
  has_header: true
references:
  countries:
    kind: postgres
    dsn: postgres://user@localhost/db
    table: public.countries
sample_capacity: 50
rules:
  - name: email_present
    kind: not_null
    columns: [email]
  - name: age_range
    kind: range
    column: age
    min: 0
    max: 120
    severity: warning
    null_policy: skip
  - name: country_known
    kind: reference
    column: country
    reference: countries
    ref_column: code
`

/*
TestDecodeYAML checks the YAML form end to end: source blocks, the column
shorthand, pointer-valued bounds, and rule conversion.
*/
func TestDecodeYAML(t *testing.T) {
	s, err := Decode([]byte(sampleYAML), ".yaml")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if s.Job != "customers" {
		t.Errorf("Job = %q, want %q", s.Job, "customers")
	}
	if s.Dataset.Kind != "csv" || s.Dataset.Path != "customers.csv" || !s.Dataset.HasHeader {
		t.Errorf("Dataset = %+v", s.Dataset)
	}
	if ref := s.References["countries"]; ref.Kind != "postgres" || ref.Table != "public.countries" {
		t.Errorf("References[countries] = %+v", ref)
	}
	if s.SampleCapacity != 50 {
		t.Errorf("SampleCapacity = %d, want 50", s.SampleCapacity)
	}

	rules := s.RuleList()
	if len(rules) != 3 {
		t.Fatalf("RuleList() len = %d, want 3", len(rules))
	}
	age := rules[1]
	if age.Kind != rule.KindRange {
		t.Errorf("rules[1].Kind = %q", age.Kind)
	}
	if len(age.Columns) != 1 || age.Columns[0] != "age" {
		t.Errorf("rules[1].Columns = %v, want the column shorthand expanded", age.Columns)
	}
	if age.Min == nil || *age.Min != 0 || age.Max == nil || *age.Max != 120 {
		t.Errorf("rules[1] bounds = %v..%v", age.Min, age.Max)
	}
	if age.Severity != rule.SeverityWarning || age.NullPolicy != rule.NullSkip {
		t.Errorf("rules[1] severity/null_policy = %q/%q", age.Severity, age.NullPolicy)
	}
}

func TestDecodeJSON(t *testing.T) {
	raw := `{
		"job": "orders",
		"dataset": {"kind": "sqlite", "dsn": "file:orders.db", "table": "orders"},
		"rules": [{"name": "id_unique", "kind": "unique", "columns": ["id"]}]
	}`
	s, err := Decode([]byte(raw), ".json")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if s.Dataset.Kind != "sqlite" || len(s.Rules) != 1 {
		t.Errorf("Spec = %+v", s)
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spec.yml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Job != "customers" {
		t.Errorf("Job = %q", s.Job)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() on a missing file should fail")
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode([]byte("job: [unclosed"), ".yaml"); err == nil {
		t.Error("Decode() should reject malformed yaml")
	}
	if _, err := Decode([]byte(`{"job":`), ".json"); err == nil {
		t.Error("Decode() should reject malformed json")
	}
}

/*
TestValidate exercises the spec linter: source checks, the reference
cross-check, and pass-through of rule findings.
*/
func TestValidate(t *testing.T) {
	s, err := Decode([]byte(sampleYAML), ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	if issues := Validate(*s); len(issues) != 0 {
		t.Errorf("Validate() on the sample spec = %v, want none", issues)
	}
}

func TestValidateSourceIssues(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		path string
		msg  string
	}{
		{"empty kind", Source{}, "dataset.kind", "must not be empty"},
		{"csv without path", Source{Kind: "csv"}, "dataset.path", "require a path"},
		{"bad delimiter", Source{Kind: "csv", Path: "x.csv", Delimiter: ";;"}, "dataset.delimiter", "single character"},
		{"db without dsn", Source{Kind: "postgres", Table: "t"}, "dataset.dsn", "require a dsn"},
		{"db without table", Source{Kind: "mssql", DSN: "sqlserver://x"}, "dataset.table", "table or a query"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Validate(Spec{Job: "j", Dataset: tt.src})
			if !hasIssue(issues, ruleset.SeverityError, tt.path, tt.msg) {
				t.Errorf("Validate() = %v, want error at %s containing %q", issues, tt.path, tt.msg)
			}
		})
	}
}

func TestValidateUnknownKindWarns(t *testing.T) {
	issues := Validate(Spec{Job: "j", Dataset: Source{Kind: "bigquery"}})
	if !hasIssue(issues, ruleset.SeverityWarning, "dataset.kind", "unknown source kind") {
		t.Errorf("Validate() = %v, want a warning for the unknown kind", issues)
	}
	for _, iss := range issues {
		if iss.Severity == ruleset.SeverityError {
			t.Errorf("unknown kinds must not be errors, got %v", iss)
		}
	}
}

/*
TestValidateRegisteredKindAccepted verifies that a source kind registered
with the dataset factory does not warn, even when it is not one of the
built-ins; external registration is a supported extension point.
*/
func TestValidateRegisteredKindAccepted(t *testing.T) {
	dataset.Register("lakehouse", func(context.Context, dataset.Config) (dataset.Dataset, error) {
		return dataset.NewMemory(), nil
	})

	issues := Validate(Spec{Job: "j", Dataset: Source{Kind: "lakehouse"}})
	for _, iss := range issues {
		if iss.Path == "dataset.kind" {
			t.Errorf("registered kind should not be flagged, got %v", iss)
		}
	}
}

func TestValidateUndeclaredReference(t *testing.T) {
	s := Spec{
		Job:     "j",
		Dataset: Source{Kind: "csv", Path: "x.csv"},
		Rules: []RuleSpec{{
			Name: "country_known", Kind: "reference", Column: "country",
			Reference: "countries", RefColumn: "code",
		}},
	}
	issues := Validate(s)
	if !hasIssue(issues, ruleset.SeverityError, "rules[0].reference", "not declared") {
		t.Errorf("Validate() = %v, want an error for the undeclared reference set", issues)
	}
}

func TestValidateNegativeSampleCapacity(t *testing.T) {
	s := Spec{Job: "j", Dataset: Source{Kind: "csv", Path: "x.csv"}, SampleCapacity: -1}
	if !hasIssue(Validate(s), ruleset.SeverityError, "sample_capacity", "negative") {
		t.Error("Validate() should reject a negative sample_capacity")
	}
}

func hasIssue(issues []ruleset.Issue, sev ruleset.IssueSeverity, path, substr string) bool {
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, substr) {
			return true
		}
	}
	return false
}

// Package config defines the serializable run specification for the
// validation CLI: which dataset to read, which reference sets to resolve,
// and the declarative rule list.
//
// Specs load from JSON or YAML; field names in Go mirror the file structure.
// The engine itself never sees these types: a Spec is converted into
// dataset configs and rule values at the wiring layer, so library callers can
// skip this package entirely.
//
// Example (YAML, trimmed):
//
//	job: customers
//	dataset:
//	  kind: csv
//	  path: customers.csv
//	  has_header: true
//	references:
//	  countries:
//	    kind: postgres
//	    dsn: postgres://user@localhost/db
//	    table: public.countries
//	rules:
//	  - name: email_present
//	    kind: not_null
//	    columns: [email]
//	  - name: age_range
//	    kind: range
//	    column: age
//	    min: 0
//	    max: 120
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ysing58/dataquality/internal/dataset"
	"github.com/ysing58/dataquality/internal/rule"
)

// Spec is the top-level run specification decoded from a spec file.
type Spec struct {
	// Job names the run; it labels metrics and log lines.
	Job string `json:"job" yaml:"job"`

	// Dataset describes the data under validation.
	Dataset Source `json:"dataset" yaml:"dataset"`

	// References maps reference-set names to their backing datasets, for
	// referential-integrity rules.
	References map[string]Source `json:"references,omitempty" yaml:"references,omitempty"`

	// SampleCapacity bounds the failing-record sample kept per rule.
	SampleCapacity int `json:"sample_capacity,omitempty" yaml:"sample_capacity,omitempty"`

	// Rules is the ordered rule list.
	Rules []RuleSpec `json:"rules" yaml:"rules"`
}

// Source selects and configures a dataset source. Kind decides which fields
// apply; see internal/dataset for the source implementations.
type Source struct {
	Kind string `json:"kind" yaml:"kind"`

	// File-based sources.
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	HasHeader bool   `json:"has_header,omitempty" yaml:"has_header,omitempty"`

	// Database-backed sources.
	DSN   string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	Table string `json:"table,omitempty" yaml:"table,omitempty"`
	Query string `json:"query,omitempty" yaml:"query,omitempty"`

	Columns       []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	PartitionSize int      `json:"partition_size,omitempty" yaml:"partition_size,omitempty"`
}

// DatasetConfig converts the Source into the dataset factory's config.
func (s Source) DatasetConfig() dataset.Config {
	return dataset.Config{
		Kind:          s.Kind,
		Path:          s.Path,
		Delimiter:     s.Delimiter,
		HasHeader:     s.HasHeader,
		DSN:           s.DSN,
		Table:         s.Table,
		Query:         s.Query,
		Columns:       s.Columns,
		PartitionSize: s.PartitionSize,
	}
}

// RuleSpec is the file form of one rule.
type RuleSpec struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        string `json:"kind" yaml:"kind"`

	// Column and Columns are alternatives; Column is shorthand for a single
	// target.
	Column  string   `json:"column,omitempty" yaml:"column,omitempty"`
	Columns []string `json:"columns,omitempty" yaml:"columns,omitempty"`

	Severity   string `json:"severity,omitempty" yaml:"severity,omitempty"`
	NullPolicy string `json:"null_policy,omitempty" yaml:"null_policy,omitempty"`

	Min          *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinExclusive bool     `json:"min_exclusive,omitempty" yaml:"min_exclusive,omitempty"`
	MaxExclusive bool     `json:"max_exclusive,omitempty" yaml:"max_exclusive,omitempty"`

	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`
	RefColumn string `json:"ref_column,omitempty" yaml:"ref_column,omitempty"`

	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// Rule converts the spec entry into the engine's rule value.
func (rs RuleSpec) Rule() rule.Rule {
	cols := rs.Columns
	if len(cols) == 0 && rs.Column != "" {
		cols = []string{rs.Column}
	}
	return rule.Rule{
		Name:         rs.Name,
		Description:  rs.Description,
		Kind:         rule.Kind(rs.Kind),
		Columns:      cols,
		Severity:     rule.Severity(rs.Severity),
		NullPolicy:   rule.NullPolicy(rs.NullPolicy),
		Min:          rs.Min,
		Max:          rs.Max,
		MinExclusive: rs.MinExclusive,
		MaxExclusive: rs.MaxExclusive,
		Pattern:      rs.Pattern,
		Reference:    rs.Reference,
		RefColumn:    rs.RefColumn,
		Expression:   rs.Expression,
	}
}

// RuleList converts every RuleSpec, preserving order.
func (s *Spec) RuleList() []rule.Rule {
	out := make([]rule.Rule, 0, len(s.Rules))
	for _, rs := range s.Rules {
		out = append(out, rs.Rule())
	}
	return out
}

// Load reads a Spec from path, decoding by extension: .yaml/.yml as YAML,
// anything else as JSON.
func Load(path string) (*Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Decode(raw, filepath.Ext(path))
}

// Decode unmarshals a Spec from raw bytes. ext chooses the codec the way
// Load does.
func Decode(raw []byte, ext string) (*Spec, error) {
	var s Spec
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("config: decode yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("config: decode json: %w", err)
		}
	}
	return &s, nil
}

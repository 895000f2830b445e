// Package report defines the immutable result of a validation run and the
// builder that assembles it from aggregated metrics.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/ysing58/dataquality/internal/aggregate"
	"github.com/ysing58/dataquality/internal/rule"
	"github.com/ysing58/dataquality/internal/ruleset"
)

// RuleMetrics is the dataset-wide verdict for one rule.
type RuleMetrics struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Kind        rule.Kind     `json:"kind"`
	Severity    rule.Severity `json:"severity"`

	Passed  int64 `json:"passed"`
	Failed  int64 `json:"failed"`
	Skipped int64 `json:"skipped,omitempty"`
	// Errored counts records where the rule itself could not be evaluated.
	// Tracked apart from Failed: it measures rule health, not data quality.
	Errored int64 `json:"errored,omitempty"`

	// PassRate is Passed / (Passed + Failed), or 1 when both are zero (an
	// empty dataset vacuously passes).
	PassRate float64 `json:"pass_rate"`

	// Samples holds up to the configured capacity of failing outcomes, in
	// (partition, row) order.
	Samples []rule.Outcome `json:"samples,omitempty"`
	// ErrorSamples holds evaluation-error outcomes under the same cap.
	ErrorSamples []rule.Outcome `json:"error_samples,omitempty"`
}

// Total returns the records the rule classified, skips and errors included.
func (m RuleMetrics) Total() int64 { return m.Passed + m.Failed + m.Skipped + m.Errored }

// Report is the final, immutable result of one validation run. Build it once
// with Build; the engine never mutates it afterwards.
type Report struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`

	Partitions int   `json:"partitions"`
	Records    int64 `json:"records"`

	// Rules appear in rule-set declaration order.
	Rules []RuleMetrics `json:"rules"`

	// OverallPassed is true iff no error-severity rule failed any record.
	OverallPassed bool `json:"overall_passed"`
}

// Rule returns the metrics for a rule by name.
func (r *Report) Rule(name string) (RuleMetrics, bool) {
	for _, m := range r.Rules {
		if m.Name == name {
			return m, true
		}
	}
	return RuleMetrics{}, false
}

// SummaryRow is one line of the per-rule summary table.
type SummaryRow struct {
	Name     string
	Passed   bool
	Failures int64
	Total    int64
}

// Summary returns one row per rule: name, whether it fully passed, failure
// count, and total records classified.
func (r *Report) Summary() []SummaryRow {
	rows := make([]SummaryRow, 0, len(r.Rules))
	for _, m := range r.Rules {
		rows = append(rows, SummaryRow{
			Name:     m.Name,
			Passed:   m.Failed == 0 && m.Errored == 0,
			Failures: m.Failed,
			Total:    m.Total(),
		})
	}
	return rows
}

// Build assembles the Report from a resolved aggregate. Rules absent from the
// aggregate (an empty dataset) report a vacuous pass.
func Build(rs *ruleset.RuleSet, agg *aggregate.Result) *Report {
	rep := &Report{
		RunID:         uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		OverallPassed: true,
	}
	if agg != nil {
		rep.Partitions = agg.Partitions
		rep.Records = agg.Records
	}

	for _, r := range rs.Rules() {
		m := RuleMetrics{
			Name:        r.Name,
			Description: r.Description,
			Kind:        r.Kind,
			Severity:    severityOrDefault(r.Severity),
		}
		if agg != nil {
			if c := agg.Counts[r.Name]; c != nil {
				m.Passed = c.Passed
				m.Failed = c.Failed
				m.Skipped = c.Skipped
				m.Errored = c.Errored
			}
			m.Samples = agg.Samples[r.Name]
			m.ErrorSamples = agg.ErrorSamples[r.Name]
		}
		m.PassRate = passRate(m.Passed, m.Failed)

		if m.Severity == rule.SeverityError && m.Failed > 0 {
			rep.OverallPassed = false
		}
		rep.Rules = append(rep.Rules, m)
	}
	return rep
}

func severityOrDefault(s rule.Severity) rule.Severity {
	if s == "" {
		return rule.SeverityError
	}
	return s
}

func passRate(passed, failed int64) float64 {
	if passed+failed == 0 {
		return 1.0
	}
	return float64(passed) / float64(passed+failed)
}

package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysing58/dataquality/internal/aggregate"
	"github.com/ysing58/dataquality/internal/dataset"
	"github.com/ysing58/dataquality/internal/evaluate"
	"github.com/ysing58/dataquality/internal/rule"
	"github.com/ysing58/dataquality/internal/ruleset"
	"github.com/ysing58/dataquality/pkg/records"
)

func f64(v float64) *float64 { return &v }

func mustRuleSet(t *testing.T, rules ...rule.Rule) *ruleset.RuleSet {
	t.Helper()
	rs, err := ruleset.New(rules)
	require.NoError(t, err)
	return rs
}

func resolve(t *testing.T, rs *ruleset.RuleSet, recs []records.Record, size int) *aggregate.Result {
	t.Helper()
	var compiled []*rule.Compiled
	for _, r := range rs.Rules() {
		c, err := rule.Compile(r, nil)
		require.NoError(t, err)
		compiled = append(compiled, c)
	}
	parts, err := dataset.Chunk(recs, size).Partitions(context.Background())
	require.NoError(t, err)

	var agg *aggregate.Result
	for i, p := range parts {
		pr, err := evaluate.Partition(context.Background(), p, i, compiled, 10)
		require.NoError(t, err)
		agg = aggregate.Merge(agg, aggregate.From(pr))
	}
	if agg != nil {
		agg.Resolve()
	}
	return agg
}

func TestBuildEmptyDataset(t *testing.T) {
	rs := mustRuleSet(t,
		rule.Rule{Name: "nn", Kind: rule.KindNotNull, Columns: []string{"email"}},
	)
	rep := Build(rs, resolve(t, rs, nil, 10))

	assert.True(t, rep.OverallPassed)
	assert.Equal(t, int64(0), rep.Records)
	require.Len(t, rep.Rules, 1)
	assert.Equal(t, 1.0, rep.Rules[0].PassRate)
	assert.Equal(t, rule.SeverityError, rep.Rules[0].Severity)
	assert.NotEmpty(t, rep.RunID)
}

func TestBuildOverallVerdict(t *testing.T) {
	recs := []records.Record{
		{"email": "a@x.com", "age": 200},
		{"email": nil, "age": 30},
	}

	/* A warning-severity failure must not flip the overall verdict. */
	rs := mustRuleSet(t,
		rule.Rule{Name: "nn", Kind: rule.KindNotNull, Severity: rule.SeverityWarning, Columns: []string{"email"}},
	)
	rep := Build(rs, resolve(t, rs, recs, 10))
	nn, ok := rep.Rule("nn")
	require.True(t, ok)
	assert.Equal(t, int64(1), nn.Failed)
	assert.True(t, rep.OverallPassed)

	/* An error-severity failure must. */
	rs = mustRuleSet(t,
		rule.Rule{Name: "rng", Kind: rule.KindRange, Columns: []string{"age"}, Min: f64(0), Max: f64(120)},
	)
	rep = Build(rs, resolve(t, rs, recs, 10))
	assert.False(t, rep.OverallPassed)
}

func TestBuildMetrics(t *testing.T) {
	recs := []records.Record{
		{"id": 1, "age": 25},
		{"id": 2, "age": nil},
		{"id": 1, "age": 130},
	}
	rs := mustRuleSet(t,
		rule.Rule{Name: "rng", Kind: rule.KindRange, Columns: []string{"age"}, Min: f64(0), Max: f64(120)},
		rule.Rule{Name: "uq", Kind: rule.KindUnique, Columns: []string{"id"}},
	)
	rep := Build(rs, resolve(t, rs, recs, 2))

	assert.Equal(t, int64(3), rep.Records)
	assert.Equal(t, 2, rep.Partitions)

	rng, _ := rep.Rule("rng")
	// The null age fails under the range default null policy.
	assert.Equal(t, int64(1), rng.Passed)
	assert.Equal(t, int64(2), rng.Failed)
	assert.InDelta(t, 1.0/3.0, rng.PassRate, 1e-9)
	assert.Len(t, rng.Samples, 2)

	uq, _ := rep.Rule("uq")
	assert.Equal(t, int64(1), uq.Passed)
	assert.Equal(t, int64(2), uq.Failed)

	// Declaration order is preserved.
	assert.Equal(t, "rng", rep.Rules[0].Name)
	assert.Equal(t, "uq", rep.Rules[1].Name)
}

func TestSummary(t *testing.T) {
	recs := []records.Record{
		{"email": "a@x.com"},
		{"email": nil},
	}
	rs := mustRuleSet(t,
		rule.Rule{Name: "nn", Kind: rule.KindNotNull, Columns: []string{"email"}},
	)
	rep := Build(rs, resolve(t, rs, recs, 10))

	rows := rep.Summary()
	require.Len(t, rows, 1)
	assert.Equal(t, "nn", rows[0].Name)
	assert.False(t, rows[0].Passed)
	assert.Equal(t, int64(1), rows[0].Failures)
	assert.Equal(t, int64(2), rows[0].Total)
}

// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Validation runs are batch jobs, so metrics are collected in a private
// registry and pushed once per run instead of being exposed on a scrape
// endpoint. All Prometheus-specific dependencies live here; the rest of the
// project depends only on metrics.Backend.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/ysing58/dataquality/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // "dq_stage_total"
	stageDuration *prometheus.SummaryVec // "dq_stage_duration_seconds"
	recordCounter prometheus.Counter     // "dq_records_total"
	ruleCounters  *prometheus.CounterVec // "dq_rule_*_total" collapsed by status
}

// NewBackend constructs a Pushgateway backend. jobName is the Pushgateway
// "job" grouping key; gatewayURL is required.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "dqcheck"
	}

	reg := prometheus.NewRegistry()

	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dq_stage_total",
			Help: "Total validation stage executions, partitioned by stage and status.",
		},
		[]string{"stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "dq_stage_duration_seconds",
			Help:       "Duration of validation stages in seconds, partitioned by stage and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage", "status"},
	)
	recordCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dq_records_total",
			Help: "Total records checked by this validation job.",
		},
	)
	ruleCounters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dq_rule_outcomes_total",
			Help: "Per-rule outcome counts, partitioned by rule and status.",
		},
		[]string{"rule", "status"},
	)

	for _, c := range []prometheus.Collector{stageCounter, stageDuration, recordCounter, ruleCounters} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		recordCounter: recordCounter,
		ruleCounters:  ruleCounters,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "dq_stage_total":
		b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)

	case "dq_records_total":
		b.recordCounter.Add(delta)

	case "dq_rule_passed_total":
		b.ruleCounters.WithLabelValues(labels["rule"], "passed").Add(delta)
	case "dq_rule_failed_total":
		b.ruleCounters.WithLabelValues(labels["rule"], "failed").Add(delta)
	case "dq_rule_errored_total":
		b.ruleCounters.WithLabelValues(labels["rule"], "errored").Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "dq_stage_duration_seconds" {
		return
	}
	b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}

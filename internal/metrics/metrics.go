// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from validation runs.
//
// The package is intentionally minimal:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems (Prometheus Pushgateway, Datadog) are isolated
//     in subpackages; the engine depends only on this interface.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g.
	// Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage measures one stage of a run (resolve, evaluate, aggregate):
// latency plus success/failure.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "stage": stage, "status": status}
	backend.IncCounter("dq_stage_total", 1, lbls)
	backend.ObserveHistogram("dq_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRecords adds to the records-checked counter for a run.
func RecordRecords(job string, n int64) {
	backend.IncCounter("dq_records_total", float64(n), Labels{"job": job})
}

// RecordRule reports one rule's dataset-wide tallies.
func RecordRule(job, name string, passed, failed, errored int64) {
	lbls := Labels{"job": job, "rule": name}
	backend.IncCounter("dq_rule_passed_total", float64(passed), lbls)
	backend.IncCounter("dq_rule_failed_total", float64(failed), lbls)
	if errored > 0 {
		backend.IncCounter("dq_rule_errored_total", float64(errored), lbls)
	}
}

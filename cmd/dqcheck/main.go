package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ysing58/dataquality/internal/config"
	"github.com/ysing58/dataquality/internal/dataset"
	"github.com/ysing58/dataquality/internal/metrics"
	"github.com/ysing58/dataquality/internal/metrics/datadog"
	"github.com/ysing58/dataquality/internal/metrics/prompush"
	"github.com/ysing58/dataquality/internal/report"
	"github.com/ysing58/dataquality/internal/ruleset"
	"github.com/ysing58/dataquality/internal/runner"

	// register all built-in dataset sources with the factory.
	// the spec selects which one to use, but the binary supports all of them.
	_ "github.com/ysing58/dataquality/internal/dataset/all"
)

// main delegates to run and exits with its code. os.Exit skips deferred
// functions, so everything that must unwind on a failing verdict (the metrics
// flush, source cleanup) lives inside run.
func main() {
	os.Exit(run(os.Args[1:]))
}

// run loads the run spec, optionally initializes a metrics backend, executes
// the validation run, and returns the process exit code.
func run(args []string) int {
	var (
		specPath          string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	fs := flag.NewFlagSet("dqcheck", flag.ContinueOnError)
	fs.StringVar(&specPath, "config", "configs/sample.yaml", "run spec path (JSON or YAML)")
	fs.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none)")
	fs.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env DQ_PUSHGATEWAY_URL)")
	fs.BoolVar(&validate, "validate", false, "validate the run spec and exit")
	verbose := fs.Bool("v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	spec, err := config.Load(specPath)
	if err != nil {
		return fail("load spec: %v", err)
	}

	// Static spec validation before anything touches data.
	issues := config.Validate(*spec)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == ruleset.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("spec is invalid: %v", specPath)
		return 1
	}
	if validate {
		log.Printf("spec is valid: %v", specPath)
		return 0
	}

	rt, err := config.LoadRuntime()
	if err != nil {
		return fail("%v", err)
	}

	// Decide metrics backend: flag, then env, then default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = rt.MetricsBackend
	}
	jobName := spec.Job
	if jobName == "" {
		jobName = "dqcheck"
	}
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = rt.PushgatewayURL
		}
		b, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, jobName)
			metrics.SetBackend(b)
		}

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{Addr: rt.StatsdAddr, Namespace: "dq."})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			metrics.SetBackend(b)
		}

	case "", "none":
		// metrics disabled; nop backend remains
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	// Flush whatever backend is installed once the run settles. Failed runs
	// are the ones the failure counters exist for, so this must run on every
	// exit path below.
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	start := time.Now()

	rs, err := ruleset.New(spec.RuleList())
	if err != nil {
		return fail("%v", err)
	}

	ds, err := dataset.New(ctx, spec.Dataset.DatasetConfig())
	if err != nil {
		return fail("open dataset: %v", err)
	}
	defer closeSource(ds)
	refs := runner.References{}
	for name, src := range spec.References {
		rds, err := dataset.New(ctx, src.DatasetConfig())
		if err != nil {
			return fail("open reference set %q: %v", name, err)
		}
		defer closeSource(rds)
		refs[name] = rds
	}

	if *verbose {
		log.Printf("run: dataset=%s rules=%d references=%d", spec.Dataset.Kind, rs.Len(), len(refs))
	}

	rep, err := runner.Run(ctx, ds, rs, refs, runner.Options{
		Job:            jobName,
		SampleCapacity: spec.SampleCapacity,
		Parallelism:    rt.Parallelism,
	})
	if err != nil {
		log.Printf("%v", err)
		return 1
	}

	printReport(rep, *verbose)

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	if !rep.OverallPassed {
		return 1
	}
	return 0
}

// closeSource releases a dataset's backing handles when the source has any.
func closeSource(ds dataset.Dataset) {
	if c, ok := ds.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("close source: %v", err)
		}
	}
}

// printReport writes the per-rule summary table and, when verbose, the
// sampled failing records.
func printReport(rep *report.Report, verbose bool) {
	fmt.Printf("run %s: %d records in %d partitions\n", rep.RunID, rep.Records, rep.Partitions)
	fmt.Printf("%-30s %-8s %10s %10s %10s\n", "RULE", "STATUS", "FAILURES", "TOTAL", "PASS RATE")
	for _, m := range rep.Rules {
		status := "PASS"
		if m.Failed > 0 || m.Errored > 0 {
			status = "FAIL"
			if m.Severity != "error" {
				status = "WARN"
			}
		}
		fmt.Printf("%-30s %-8s %10d %10d %9.2f%%\n", m.Name, status, m.Failed, m.Total(), m.PassRate*100)
	}
	verdict := "PASSED"
	if !rep.OverallPassed {
		verdict = "FAILED"
	}
	fmt.Printf("overall: %s\n", verdict)

	if !verbose {
		return
	}
	for _, m := range rep.Rules {
		for _, s := range m.Samples {
			fmt.Printf("  %s: partition=%d row=%d reason=%q observed=%v\n",
				m.Name, s.Record.Partition, s.Record.Row, s.Reason, s.Observed)
		}
		for _, s := range m.ErrorSamples {
			fmt.Printf("  %s: partition=%d row=%d rule error: %s\n",
				m.Name, s.Record.Partition, s.Record.Row, s.Reason)
		}
	}
}

func fail(format string, a ...any) int {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	return 1
}

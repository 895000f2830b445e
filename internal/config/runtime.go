package config

import (
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Runtime holds the environment-driven knobs that do not belong in a spec
// file: operator concerns rather than dataset concerns.
type Runtime struct {
	// MetricsBackend selects the metrics sink: "pushgateway", "datadog", or
	// "none". Flags may override it.
	MetricsBackend string `env:"DQ_METRICS_BACKEND" envDefault:"none"`

	// PushgatewayURL is the Prometheus Pushgateway base URL.
	PushgatewayURL string `env:"DQ_PUSHGATEWAY_URL" envDefault:"http://localhost:9091"`

	// StatsdAddr is the DogStatsD address for the datadog backend.
	StatsdAddr string `env:"DQ_STATSD_ADDR" envDefault:"127.0.0.1:8125"`

	// Parallelism caps concurrent partition evaluations; 0 means GOMAXPROCS.
	Parallelism int `env:"DQ_PARALLELISM" envDefault:"0"`
}

var dotenvOnce sync.Once

// LoadRuntime reads Runtime from the environment, loading a .env file first
// if one exists.
func LoadRuntime() (Runtime, error) {
	dotenvOnce.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	var rt Runtime
	if err := env.Parse(&rt); err != nil {
		return Runtime{}, fmt.Errorf("config: parse environment: %w", err)
	}
	return rt, nil
}

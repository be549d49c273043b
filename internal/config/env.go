package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. DATAPREP_LOG_LEVEL.
const EnvPrefix = "DATAPREP"

// Env holds process settings that may come from the environment. Empty values
// leave the pipeline file untouched.
type Env struct {
	LogLevel       string `envconfig:"LOG_LEVEL"`
	LogFormat      string `envconfig:"LOG_FORMAT"`
	LogOutput      string `envconfig:"LOG_OUTPUT"`
	LogFile        string `envconfig:"LOG_FILE"`
	ExportWorkers  int    `envconfig:"EXPORT_WORKERS"`
	MetricsBackend string `envconfig:"METRICS_BACKEND" default:"none"`
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"`
	DatadogAddr    string `envconfig:"DATADOG_ADDR" default:"127.0.0.1:8125"`
}

// LoadEnv reads DATAPREP_* variables.
func LoadEnv() (Env, error) {
	var e Env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return Env{}, fmt.Errorf("read %s_* environment: %w", EnvPrefix, err)
	}
	return e, nil
}

// Apply overrides logging and runtime settings of p with the non-empty
// environment values.
func (e Env) Apply(p *Pipeline) {
	if e.LogLevel != "" {
		p.Logging.Level = e.LogLevel
	}
	if e.LogFormat != "" {
		p.Logging.Format = e.LogFormat
	}
	if e.LogOutput != "" {
		p.Logging.Output = e.LogOutput
	}
	if e.LogFile != "" {
		p.Logging.FilePath = e.LogFile
	}
	if e.ExportWorkers > 0 {
		p.Runtime.ExportWorkers = e.ExportWorkers
	}
}

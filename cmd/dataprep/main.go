// Command dataprep cleans a tabular dataset, derives group reports from it
// and exports the results, as described by a pipeline file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"dataprep/internal/config"
	"dataprep/internal/logging"
	"dataprep/internal/metrics"
	"dataprep/internal/metrics/datadog"
	"dataprep/internal/metrics/prompush"

	// register all backends with the storage factory.
	_ "dataprep/internal/storage/all"
)

func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		datadogAddrFlg    string
		validate          bool
		showProfile       bool
		verbose           bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/wine.json", "pipeline config path (JSON or YAML)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend: pushgateway, datadog or none (overrides DATAPREP_METRICS_BACKEND)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides DATAPREP_PUSHGATEWAY_URL)")
	flag.StringVar(&datadogAddrFlg, "datadog-addr", "", "DogStatsD address (overrides DATAPREP_DATADOG_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&showProfile, "profile", false, "print a column profile of the input as CSV and exit")
	flag.BoolVar(&verbose, "v", false, "enable debug logs")
	flag.Parse()

	p, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	env, err := config.LoadEnv()
	if err != nil {
		fatalf("%v", err)
	}
	env.Apply(&p)
	if verbose {
		p.Logging.Level = "debug"
	}

	logger, closer, err := logging.New(p.Logging)
	if err != nil {
		fatalf("logging: %v", err)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	issues := config.ValidatePipeline(p)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		slog.Error("configuration is invalid", "config", cfgPath)
		os.Exit(1)
	}
	if validate {
		slog.Info("configuration is valid", "config", cfgPath)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithRunID(ctx, uuid.NewString())

	if showProfile {
		if err := writeProfile(ctx, p, os.Stdout); err != nil {
			slog.ErrorContext(ctx, "profile: failed", "err", err)
			closer.Close()
			os.Exit(1)
		}
		return
	}

	backendName := pick(metricsBackendFlg, env.MetricsBackend)
	if err := setupMetrics(backendName, p.Job, pick(pushGatewayURLFlg, env.PushgatewayURL), pick(datadogAddrFlg, env.DatadogAddr)); err != nil {
		slog.Warn("metrics: backend unavailable; using nop", "backend", backendName, "err", err)
	}

	start := time.Now()
	slog.InfoContext(ctx, "pipeline: start",
		"job", p.Job,
		"source", p.Source.File.Path,
		"transforms", len(p.Transform),
		"reports", len(p.Reports),
		"exports", len(p.Exports))

	sum, err := run(ctx, p)
	if ferr := metrics.Flush(); ferr != nil {
		slog.WarnContext(ctx, "metrics: flush failed", "err", ferr)
	}
	if err != nil {
		slog.ErrorContext(ctx, "pipeline: failed", "err", err)
		closer.Close()
		os.Exit(1)
	}

	slog.InfoContext(ctx, "pipeline: done",
		"loaded", sum.Loaded,
		"skipped", sum.Skipped,
		"cleaned", sum.Cleaned,
		"tables", len(sum.Tables),
		"exports", len(sum.Exports),
		"elapsed", time.Since(start).Truncate(time.Millisecond))
}

// setupMetrics installs the named metrics backend. Unknown names and "none"
// leave the nop backend in place.
func setupMetrics(name, job, gatewayURL, datadogAddr string) error {
	switch name {
	case "pushgateway":
		if gatewayURL == "" {
			gatewayURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gatewayURL)
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
		slog.Info("metrics: enabled", "backend", name, "url", gatewayURL, "job", job)
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{Addr: datadogAddr, GlobalTags: []string{"job:" + job}})
		if err != nil {
			return err
		}
		metrics.SetBackend(b)
		slog.Info("metrics: enabled", "backend", name, "addr", datadogAddr)
	case "", "none":
		slog.Debug("metrics: disabled")
	default:
		return fmt.Errorf("unknown metrics backend %q", name)
	}
	return nil
}

// pick returns the first non-empty value.
func pick(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

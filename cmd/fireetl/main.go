package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"fireetl/internal/config"
	"fireetl/internal/metrics"
	"fireetl/internal/metrics/prompush"
	"fireetl/internal/pipeline"
)

// main is the entry point for the fire-incident ETL binary. It loads and
// validates the configuration, optionally initializes a metrics backend, and
// runs the pipeline end to end.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validateOnly      bool
		skipValidation    bool
		skipSchema        bool
		force             bool
		sample            int
	)

	flag.StringVar(&cfgPath, "config", "", "config JSON path (defaults + env when empty)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validateOnly, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&skipValidation, "skip-validation", false, "bypass the data validation gate")
	flag.BoolVar(&skipSchema, "skip-schema", false, "skip table creation (tables must exist)")
	flag.BoolVar(&force, "force", false, "continue loading even when validation fails")
	flag.IntVar(&sample, "sample", 0, "process only the first N rows (0 = all)")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fatalf("config: %v", err)
	}

	issues := config.Validate(cfg)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid")
		os.Exit(1)
	}
	if validateOnly {
		log.Printf("configuration is valid")
		os.Exit(0)
	}

	setupMetrics(metricsBackendFlg, pushGatewayURLFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	if *verbose {
		log.Printf("pipeline: source=%s db=%s:%d/%s batch=%d",
			cfg.Source.Path, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name, cfg.Load.BatchSize)
	}

	p := pipeline.New(cfg, pipeline.Options{
		Force:          force,
		SkipValidation: skipValidation,
		SkipSchema:     skipSchema,
		Sample:         sample,
	})

	res, err := p.Run(context.Background())
	if res != nil {
		res.PrintSummary(os.Stdout)
	}
	if err != nil {
		if errors.Is(err, pipeline.ErrValidationFailed) {
			log.Printf("aborted: %v (rerun with -force to load anyway)", err)
		} else {
			log.Printf("pipeline failed: %v", err)
		}
		os.Exit(1)
	}
}

// loadConfig reads the config file when given, otherwise builds the default
// config with environment overrides applied.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

// setupMetrics installs the requested metrics backend: flag, then env, then
// the nop default.
func setupMetrics(backendName, gatewayURL string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gatewayURL == "" {
			gatewayURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gatewayURL == "" {
			gatewayURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend("fireetl", gatewayURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=pushgateway url=%s", gatewayURL)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

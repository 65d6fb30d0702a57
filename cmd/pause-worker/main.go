package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"subtrack/internal/cli"
	"subtrack/internal/log"
	"subtrack/internal/metrics"
	"subtrack/internal/services"
)

func main() {
	once := flag.Bool("once", false, "apply due pauses once and exit")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address (disabled when empty)")
	flag.Parse()

	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)
	logger.Info("Starting pause-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := cli.MustOpenBackend(ctx, cfg, logger)
	defer res.Cleanup()

	// Without a listener nothing could scrape the counters, so none are kept.
	var m *metrics.Metrics
	if *metricsAddr != "" && !*once {
		srv, mm := newMetricsServer(*metricsAddr)
		m = mm
		go func() {
			logger.Info("Serving metrics", "addr", *metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics listener failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	processor := services.NewPauseProcessor(res.Store, res.Publisher, m)

	if *once {
		count, err := processor.ProcessDuePauses(ctx, time.Now())
		if err != nil {
			logger.Error("Scheduled pause processing failed", "error", err)
			os.Exit(1)
		}
		logger.Info("Scheduled pause processing complete", "paused", count)
		return
	}

	logger.Info("Scheduled pause trigger configured",
		"interval", cfg.PauseCheckInterval,
		"backend", cfg.DataBackend)

	if err := processor.Run(ctx, cfg.PauseCheckInterval, time.Now); err != nil {
		logger.Error("Scheduled pause trigger failed", "error", err)
		os.Exit(1)
	}
	logger.Info("pause-worker shutdown complete")
}

// newMetricsServer returns a server exposing /metrics and the collectors
// it serves.
func newMetricsServer(addr string) (*http.Server, *metrics.Metrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNewMetrics(registry)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler(registry))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}, m
}

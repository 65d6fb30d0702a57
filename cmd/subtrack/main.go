package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"subtrack/internal/cli"
	apphttp "subtrack/internal/http"
	"subtrack/internal/log"
	"subtrack/internal/metrics"
	"subtrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := cli.MustOpenBackend(ctx, cfg, logger)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNewMetrics(registry)

	svc := services.NewSubscriptionService(res.Store, res.Publisher, services.WithMetrics(m))
	processor := services.NewPauseProcessor(res.Store, res.Publisher, m)

	opts := []apphttp.Option{
		apphttp.WithUpcomingLimit(cfg.UpcomingLimit),
		apphttp.WithGatherer(registry),
		apphttp.WithLogger(logger.WithComponent(log.ComponentHTTP)),
	}
	if p, ok := res.Store.(apphttp.Pinger); ok {
		opts = append(opts, apphttp.WithPinger(p))
	}
	srv := apphttp.NewServer(cfg.Addr(), svc, opts...)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting subtrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"amqp_enabled", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Scheduled pause trigger configured", "interval", cfg.PauseCheckInterval)
		return processor.Run(gctx, cfg.PauseCheckInterval, time.Now)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/arcentrix/concurrentqueue/internal/config"
	"github.com/arcentrix/concurrentqueue/pkg/blockingqueue"
	"github.com/arcentrix/concurrentqueue/pkg/qlog"
	"github.com/arcentrix/concurrentqueue/pkg/qmetrics"
)

var (
	configPath  string
	metricsAddr string
	runDuration time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run a producer/consumer demo against a configured queue",
	RunE:  runDemo,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "path to a queue config file (yaml/json); optional, defaults apply if unset")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address to serve Prometheus /metrics on")
	runCmd.Flags().DurationVar(&runDuration, "duration", 5*time.Second, "how long to run the demo before shutting down")
}

func runDemo(cmd *cobra.Command, args []string) error {
	var cfg config.AppConfig
	if configPath != "" {
		loaded, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg.SetDefaults()

	logger, err := qlog.ProvideLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	runID := uuid.NewString()
	logger = &qlog.Logger{Logger: logger.With("run_id", runID)}

	reg := prometheus.NewRegistry()
	metrics, err := qmetrics.New(reg, "queuedemo-"+runID[:8])
	if err != nil {
		return fmt.Errorf("build metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorw("metrics server stopped unexpectedly", "error", err)
		}
	}()
	defer server.Close()

	q := blockingqueue.New[int](blockingqueue.Config[int]{
		Capacity:          cfg.Queue.Capacity,
		Algorithm:         cfg.Queue.ToAlgorithm(),
		UseWaitingLocking: cfg.Queue.UseWaitingLocking,
		Logger:            logger,
		Metrics:           metrics,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runDuration)
	defer cancel()

	var produced, consumed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	for p := 0; p < cfg.Queue.Producers; p++ {
		id := p
		g.Go(func() error {
			for i := 0; ; i++ {
				if err := q.Put(gctx, id*1_000_000+i); err != nil {
					return nil
				}
				produced.Add(1)
			}
		})
	}

	for c := 0; c < cfg.Queue.Consumers; c++ {
		g.Go(func() error {
			for {
				if _, err := q.Take(gctx); err != nil {
					return nil
				}
				consumed.Add(1)
			}
		})
	}

	_ = g.Wait()
	logger.Infow("demo finished", "produced", produced.Load(), "consumed", consumed.Load())
	return nil
}

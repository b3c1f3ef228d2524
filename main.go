package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/evanofslack/porkbun-ddns/internal/config"
	"github.com/evanofslack/porkbun-ddns/internal/logger"
	"github.com/evanofslack/porkbun-ddns/internal/metrics"
	"github.com/evanofslack/porkbun-ddns/internal/porkbun"
	"github.com/evanofslack/porkbun-ddns/internal/reconcile"
	"github.com/evanofslack/porkbun-ddns/internal/resolver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Configure(cfg.LogLevel, cfg.Env)

	metrics := metrics.New(true)
	metrics.SetTargets(len(cfg.Targets))

	// Metrics and health endpoints
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: mux,
	}

	go func() {
		slog.Info("Starting metrics server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server failed", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	creds := porkbun.Credentials{APIKey: cfg.APIKey, SecretAPIKey: cfg.SecretAPIKey}
	client := porkbun.New(cfg.APIBaseURL, creds, cfg.RecordTTL, cfg.HTTPTimeout, metrics)
	ipResolver := resolver.New(cfg.IPEchoURL, cfg.HTTPTimeout, metrics)
	engine := reconcile.NewEngine(client, cfg.Targets, metrics)

	slog.Info("Starting porkbun-ddns service",
		"domain", cfg.Domain,
		"targets", len(cfg.Targets),
		"interval", cfg.CheckInterval)

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go runSyncLoop(ctx, wg, ipResolver, engine, metrics, cfg.CheckInterval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("Shutdown signal received")
	cancel()

	serverShutdownCtx, cancelServer := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelServer()
	if err := server.Shutdown(serverShutdownCtx); err != nil {
		slog.Error("Metrics server shutdown error", "error", err)
	}

	wg.Wait()
	slog.Info("Service shutdown complete")
}

// runSyncLoop drives reconciliation forever. The first cycle runs
// immediately; after that the ticker is consulted only once the previous
// cycle has fully completed, so cycles never overlap.
func runSyncLoop(ctx context.Context, wg *sync.WaitGroup, ipResolver resolver.Resolver, engine reconcile.Engine, metrics *metrics.Metrics, interval time.Duration) {
	defer wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := performSync(ctx, ipResolver, engine, metrics); err != nil {
			slog.Error("Sync cycle failed", "error", err)
		}

		select {
		case <-ticker.C:
			continue
		case <-ctx.Done():
			slog.Info("Stopping sync loop")
			return
		}
	}
}

func performSync(ctx context.Context, ipResolver resolver.Resolver, engine reconcile.Engine, metrics *metrics.Metrics) error {
	slog.Info("Starting sync cycle")
	start := time.Now()
	defer func() {
		metrics.SetSyncDuration(time.Since(start))
	}()

	ip, err := ipResolver.Resolve(ctx)
	if err != nil {
		metrics.IncSyncRun(false)
		return fmt.Errorf("resolve public ip: %w", err)
	}

	results := engine.Reconcile(ctx, ip)

	slog.Info("Sync cycle complete",
		"ip", ip,
		"updated", len(results.Updated),
		"unchanged", len(results.Unchanged),
		"missing", len(results.Missing),
		"failures", len(results.Failures))
	metrics.IncSyncRun(len(results.Failures) == 0)

	return nil
}

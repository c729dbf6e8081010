package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damirbriga107-creator/agrofin-gateway/config"
	"github.com/damirbriga107-creator/agrofin-gateway/internal/discovery"
	"github.com/damirbriga107-creator/agrofin-gateway/internal/handler"
	"github.com/damirbriga107-creator/agrofin-gateway/internal/healthcheck"
	"github.com/damirbriga107-creator/agrofin-gateway/internal/httpserver"
	"github.com/damirbriga107-creator/agrofin-gateway/internal/metrics"
	"github.com/damirbriga107-creator/agrofin-gateway/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	disc, err := buildDiscovery(cfg, logger.Component(log, "discovery"))
	if err != nil {
		log.Error("Failed to build service discovery", slog.Any("err", err))
		os.Exit(1)
	}

	collector := metrics.NewCollector(1000, logger.Component(log, "metrics"))
	collector.Start(ctx)

	monitor, err := buildMonitor(cfg, disc, collector, logger.Component(log, "healthcheck"))
	if err != nil {
		log.Error("Failed to build health monitor", slog.Any("err", err))
		os.Exit(1)
	}
	monitor.Start(ctx)

	gatewayHandler, err := handler.NewGatewayHandler(logger.Component(log, "gateway"), disc, collector)
	if err != nil {
		log.Error("Failed to build gateway handler", slog.Any("err", err))
		os.Exit(1)
	}

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(gatewayHandler, disc, collector))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Gateway listening", slog.String("address", cfg.Server.Address))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting gateway", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func buildDiscovery(cfg *config.Config, log *slog.Logger) (*discovery.Discovery, error) {
	openTimeout, err := time.ParseDuration(cfg.Breaker.OpenTimeout)
	if err != nil {
		return nil, err
	}

	return discovery.New(cfg.Services, cfg.Breaker.FailureThreshold, openTimeout, log)
}

func buildMonitor(cfg *config.Config, disc *discovery.Discovery, collector *metrics.Collector, log *slog.Logger) (*healthcheck.Monitor, error) {
	interval, err := time.ParseDuration(cfg.HealthCheck.Interval)
	if err != nil {
		return nil, err
	}

	probeTimeout, err := time.ParseDuration(cfg.HealthCheck.ProbeTimeout)
	if err != nil {
		return nil, err
	}

	return healthcheck.NewMonitor(disc, collector, interval, probeTimeout, log), nil
}

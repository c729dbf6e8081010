package main

import (
	"net/http"

	"github.com/damirbriga107-creator/agrofin-gateway/internal/discovery"
	"github.com/damirbriga107-creator/agrofin-gateway/internal/handler"
	"github.com/damirbriga107-creator/agrofin-gateway/internal/metrics"
)

func setupRouter(gatewayHandler *handler.GatewayHandler, disc *discovery.Discovery, collector *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/", gatewayHandler.ServeHTTP)
	mux.HandleFunc("/status", disc.StatusHandler())
	mux.HandleFunc("/status/summary", disc.SummaryHandler())
	mux.HandleFunc("/metrics", collector.Handler())

	return mux
}

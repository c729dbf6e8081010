package handler

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/damirbriga107-creator/agrofin-gateway/internal/discovery"
	"github.com/damirbriga107-creator/agrofin-gateway/internal/metrics"
)

// GatewayHandler proxies /api/{service}/... requests to the configured
// downstream service, consulting the availability gate first and reporting
// each outcome back through the discovery recording path.
type GatewayHandler struct {
	logger    *slog.Logger
	discovery *discovery.Discovery
	collector *metrics.Collector
	proxies   map[string]*httputil.ReverseProxy
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func NewGatewayHandler(logger *slog.Logger, disc *discovery.Discovery, collector *metrics.Collector) (*GatewayHandler, error) {
	h := &GatewayHandler{
		logger:    logger,
		discovery: disc,
		collector: collector,
		proxies:   make(map[string]*httputil.ReverseProxy),
	}

	for _, name := range disc.Names() {
		rawURL, ok := disc.URLOf(name)
		if !ok {
			continue
		}

		target, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("invalid URL for service %q: %w", name, err)
		}

		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("Proxy error",
				slog.String("service", name),
				slog.String("error", err.Error()))
			w.WriteHeader(http.StatusBadGateway)
		}
		h.proxies[name] = proxy
	}

	return h, nil
}

func (h *GatewayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientIP := extractClientIP(r)

	service, rest, ok := splitServicePath(r.URL.Path)
	if !ok {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	proxy, known := h.proxies[service]
	if !known {
		http.Error(w, "Unknown service", http.StatusNotFound)
		return
	}

	h.logger.Info("Received request",
		slog.String("from", clientIP),
		slog.String("method", r.Method),
		slog.String("service", service),
		slog.String("path", r.URL.Path))

	if !h.discovery.IsAvailable(service) {
		h.logger.Warn("Service unavailable, short-circuiting",
			slog.String("service", service),
			slog.String("client", clientIP))
		h.emitEvent(metrics.MetricEvent{
			Type:      metrics.EventRequestRejected,
			Timestamp: time.Now(),
			Service:   service,
		})
		http.Error(w, "Service temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	r.URL.Path = rest
	w.Header().Set("X-Upstream-Service", service)

	wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
	start := time.Now()
	proxy.ServeHTTP(wrapped, r)
	duration := time.Since(start)

	// 5xx from the service (or a transport error surfaced as 502) counts as
	// a failure toward the circuit breaker.
	success := wrapped.statusCode < http.StatusInternalServerError
	h.discovery.RecordCall(service, success, duration)

	h.emitEvent(metrics.MetricEvent{
		Type:       metrics.EventRequestProxied,
		Timestamp:  time.Now(),
		Service:    service,
		Duration:   duration,
		StatusCode: wrapped.statusCode,
		Success:    success,
	})
}

// splitServicePath extracts the service name from an /api/{service}/... path
// and returns the remainder to forward upstream.
func splitServicePath(path string) (service, rest string, ok bool) {
	trimmed := strings.TrimPrefix(path, "/api/")
	if trimmed == path || trimmed == "" {
		return "", "", false
	}

	service, rest, _ = strings.Cut(trimmed, "/")
	if service == "" {
		return "", "", false
	}

	return service, "/" + rest, true
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}

func (h *GatewayHandler) emitEvent(event metrics.MetricEvent) {
	if h.collector == nil {
		return
	}
	h.collector.Emit(event)
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

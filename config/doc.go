// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the gateway configuration structure
// including the downstream service URL map, circuit breaker thresholds and
// health check intervals.
package config

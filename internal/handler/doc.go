// Package handler implements the HTTP entry point that proxies gateway
// requests to downstream services, short-circuiting calls the availability
// gate rejects.
package handler

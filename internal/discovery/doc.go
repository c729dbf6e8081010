// Package discovery combines the endpoint registry and the per-service
// circuit breakers into the availability gate consulted before every proxied
// request, the call-outcome recording path shared by the health monitor and
// the request path, and the operator status snapshot.
//
// Half-open is intentionally not single-flight: concurrent IsAvailable
// callers may all pass during the open-to-half-open transition window. In
// practice concurrency per service is low enough that the simpler protocol
// wins over a compare-and-swap trial gate.
package discovery

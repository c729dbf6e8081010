// Package registry tracks the fixed set of downstream services the gateway
// fronts. Each service has exactly one Endpoint holding its base URL, last
// known health verdict and failure counters.
package registry

// gatewaytest drives the gateway through a full circuit breaker cycle
// against a fake downstream service started with downstream.go.
//
// Usage:
//
//	go run downstream.go -port 3002 -name transaction   (terminal 1)
//	go run . (the gateway, terminal 2)
//	go run gatewaytest.go -gateway http://localhost:8080 -service transaction
//
// Phases: baseline traffic, failure injection until the circuit opens,
// rejected traffic during the backoff window, recovery after the half-open
// trial succeeds.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func main() {
	var (
		gatewayURL = flag.String("gateway", "http://localhost:8080", "Gateway URL")
		downstream = flag.String("downstream", "http://localhost:3002", "Downstream service URL (for health toggling)")
		service    = flag.String("service", "transaction", "Service name to exercise")
		requests   = flag.Int("requests", 10, "Requests per phase")
	)
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	phase("Phase 1: baseline traffic", colorCyan)
	fire(client, *gatewayURL, *service, *requests)
	printBreakerState(client, *gatewayURL, *service)

	phase("Phase 2: injecting failures", colorYellow)
	toggleHealth(client, *downstream)
	fire(client, *gatewayURL, *service, *requests)
	printBreakerState(client, *gatewayURL, *service)

	phase("Phase 3: traffic during backoff window", colorRed)
	fire(client, *gatewayURL, *service, *requests)
	printBreakerState(client, *gatewayURL, *service)

	phase("Phase 4: recovery", colorGreen)
	toggleHealth(client, *downstream)
	fmt.Println("waiting for the backoff window to expire...")
	time.Sleep(65 * time.Second)
	fire(client, *gatewayURL, *service, *requests)
	printBreakerState(client, *gatewayURL, *service)
}

func phase(title, color string) {
	fmt.Printf("\n%s=== %s ===%s\n", color, title, colorReset)
}

func fire(client *http.Client, gatewayURL, service string, n int) {
	var ok, rejected, failed int

	for i := 0; i < n; i++ {
		res, err := client.Get(fmt.Sprintf("%s/api/%s/transactions", gatewayURL, service))
		if err != nil {
			failed++
			continue
		}
		io.Copy(io.Discard, res.Body)
		res.Body.Close()

		switch {
		case res.StatusCode == http.StatusServiceUnavailable:
			rejected++
		case res.StatusCode < 500:
			ok++
		default:
			failed++
		}
		time.Sleep(100 * time.Millisecond)
	}

	fmt.Printf("ok=%d rejected=%d failed=%d\n", ok, rejected, failed)
}

func toggleHealth(client *http.Client, downstream string) {
	res, err := client.Post(downstream+"/toggle-health", "application/json", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "toggle-health failed: %v\n", err)
		return
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()
}

func printBreakerState(client *http.Client, gatewayURL, service string) {
	res, err := client.Get(gatewayURL + "/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "status fetch failed: %v\n", err)
		return
	}
	defer res.Body.Close()

	var status map[string]struct {
		Healthy        bool `json:"healthy"`
		CircuitBreaker struct {
			State        string `json:"state"`
			FailureCount int    `json:"failureCount"`
		} `json:"circuitBreaker"`
	}
	if err := json.NewDecoder(res.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "status decode failed: %v\n", err)
		return
	}

	svc, ok := status[service]
	if !ok {
		fmt.Printf("service %q not in status snapshot\n", service)
		return
	}

	fmt.Printf("breaker=%s failures=%d healthy=%v\n",
		svc.CircuitBreaker.State, svc.CircuitBreaker.FailureCount, svc.Healthy)
}

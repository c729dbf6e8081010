// Downstream is a fake downstream financial service used for manual gateway
// testing. It provides /health and /transactions endpoints and can be told
// to fail its health checks at runtime.
//
// Usage:
//
//	go run downstream.go -port 3002 -name transaction
//
// POST /toggle-health flips the /health endpoint between 200 and 503 so the
// circuit breaker cycle can be exercised without killing the process.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"
)

// Transaction is a sample payload resembling the platform's transaction records.
type Transaction struct {
	ID        int64     `json:"id"`
	Account   string    `json:"account"`
	AmountEUR float64   `json:"amount_eur"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func main() {
	port := flag.Int("port", 3002, "port to listen on")
	name := flag.String("name", "transaction", "service name reported in responses")
	flag.Parse()

	var healthy atomic.Bool
	healthy.Store(true)
	var nextID atomic.Int64

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"service":%q,"status":"degraded"}`, *name)
			return
		}
		fmt.Fprintf(w, `{"service":%q,"status":"ok"}`, *name)
	})

	mux.HandleFunc("/toggle-health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		now := !healthy.Load()
		healthy.Store(now)
		log.Printf("[%s] health toggled, healthy=%v", *name, now)
		fmt.Fprintf(w, `{"healthy":%v}`, now)
	})

	mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[%s] %s %s", *name, r.Method, r.URL.Path)

		tx := Transaction{
			ID:        nextID.Add(1),
			Account:   "ACC-DEMO",
			AmountEUR: 125.50,
			Category:  "seed-purchase",
			CreatedAt: time.Now(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tx)
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("[%s] fake downstream service listening on %s", *name, addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}

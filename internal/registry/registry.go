package registry

import (
	"fmt"
	"net/url"
	"sort"
	"sync"
)

// Registry holds one Endpoint per configured downstream service. Services are
// registered once at startup and never removed.
type Registry struct {
	mutex     sync.RWMutex
	endpoints map[string]*Endpoint
}

func NewRegistry() *Registry {
	return &Registry{
		endpoints: make(map[string]*Endpoint),
	}
}

// Register adds a service to the registry. Registering the same name twice is
// a configuration bug and returns an error; main treats it as fatal.
func (r *Registry) Register(name, rawURL string) error {
	baseURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL for service %q: %w", name, err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return fmt.Errorf("invalid URL for service %q: %s", name, rawURL)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.endpoints[name]; exists {
		return fmt.Errorf("service %q is already registered", name)
	}

	r.endpoints[name] = New(name, baseURL)
	return nil
}

// Get returns the endpoint for the given service name.
func (r *Registry) Get(name string) (*Endpoint, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	e, ok := r.endpoints[name]
	return e, ok
}

// URLOf returns the configured base URL for the given service name.
func (r *Registry) URLOf(name string) (string, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	e, ok := r.endpoints[name]
	if !ok {
		return "", false
	}
	return e.URL().String(), true
}

// Names returns all registered service names in sorted order.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.endpoints)
}

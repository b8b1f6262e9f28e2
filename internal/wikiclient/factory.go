package wikiclient

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/wikicull/wikicull/internal/interfaces"
)

// BackendConstructor constructs a WikiClient given the config and logger.
type BackendConstructor func(cfg Config, logger interfaces.Logger) (WikiClient, error)

var (
	mu       sync.RWMutex
	registry = map[string]BackendConstructor{}
)

// RegisterBackend registers a named backend constructor. Name is lower-cased
// internally. Registering an existing name overwrites the previous
// constructor.
func RegisterBackend(name string, ctor BackendConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = ctor
}

// New constructs the configured WikiClient backend. It returns an error if
// the named backend has not been registered.
func New(cfg Config, logger interfaces.Logger) (WikiClient, error) {
	backend := strings.ToLower(strings.TrimSpace(string(cfg.Backend)))
	if backend == "" {
		backend = string(BackendNetHTTP)
	}

	mu.RLock()
	ctor, ok := registry[backend]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("wikiclient backend %q not registered: available backends=%v", backend, ListBackends())
	}

	wc, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to construct wikiclient backend %q: %w", backend, err)
	}
	if wc == nil {
		return nil, errors.New("wikiclient constructor returned nil")
	}
	return wc, nil
}

// ListBackends returns the list of registered backend names.
func ListBackends() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

func init() {
	RegisterBackend(string(BackendNetHTTP), func(cfg Config, logger interfaces.Logger) (WikiClient, error) {
		return NewNetHTTPClient(cfg, logger, nil)
	})
}

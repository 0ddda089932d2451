package parser

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds an unbound parser for one board endpoint.
type Factory func(boardUrl string) (Parser, error)

// Registry maps protocol names to parser factories. It is constructed
// explicitly and passed to whatever needs it; there is no process-wide
// instance.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register installs a factory under the protocol name. Registering the
// same name twice replaces the previous factory.
func (r *Registry) Register(protocolName string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[protocolName] = f
}

// Create instantiates a parser for the named protocol.
func (r *Registry) Create(protocolName, boardUrl string) (Parser, error) {
	r.mu.RLock()
	f, ok := r.factories[protocolName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown protocol %q", protocolName)
	}
	return f(boardUrl)
}

// Protocols returns the registered protocol names, sorted.
func (r *Registry) Protocols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

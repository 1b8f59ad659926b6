package strategy

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownScorer is returned when a configured scorer name has not been
// registered.
var ErrUnknownScorer = errors.New("unknown scorer")

// Registry holds the scorers available to a run. All registration happens at
// startup; lookups afterwards are read-only and safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	scorers map[string]Scorer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{scorers: make(map[string]Scorer)}
}

// Register adds a scorer under its own name. Registering the same name twice
// is an error to keep the selection explicit.
func (r *Registry) Register(s Scorer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if name == "" {
		return errors.New("scorer has empty name")
	}
	if _, exists := r.scorers[name]; exists {
		return fmt.Errorf("scorer %q already registered", name)
	}
	r.scorers[name] = s
	return nil
}

// Lookup returns the scorer registered under name.
func (r *Registry) Lookup(name string) (Scorer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scorers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScorer, name)
	}
	return s, nil
}

// Names returns the registered scorer names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scorers))
	for name := range r.scorers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

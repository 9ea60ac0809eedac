package types

import (
	"fmt"
	"slices"
	"sync"
)

// Registry maps type codes to Type instances. It is populated by the host
// before tables are compiled and is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
}

// NewRegistry returns a registry holding the built-in types.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]Type)}
	for _, t := range []Type{String, Integer, Decimal, Boolean, Date} {
		r.types[t.Code()] = t
	}
	return r
}

// Register binds code to t. Registering a code twice is an error.
func (r *Registry) Register(code string, t Type) error {
	if code == "" {
		return fmt.Errorf("type code cannot be empty")
	}
	if t == nil {
		return fmt.Errorf("type %q cannot be nil", code)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[code]; exists {
		return fmt.Errorf("type %q already registered", code)
	}
	r.types[code] = t
	return nil
}

// Resolve returns the type registered under code.
func (r *Registry) Resolve(code string) (Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, code)
	}
	return t, nil
}

// Codes returns all registered codes in sorted order.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.types))
	for code := range r.types {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Package function provides the registry of named computations used by the
// engine to derive level values from a query context and to evaluate output
// values that name a function.
package function

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Func is a registered computation. Level creators receive the query context
// as their only argument; evaluated calls receive the caller's arguments.
type Func func(ctx context.Context, args ...any) (any, error)

// Attributes is implemented by query contexts that expose named attributes
// to functions.
type Attributes interface {
	Attributes() map[string]any
}

// Registry maps function names to callables. It is populated before tables
// are compiled and is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates an empty function registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register binds name to fn. Registering a name twice is an error.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("function %q cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("function %q already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// Resolve returns the function registered under name.
func (r *Registry) Resolve(name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]
	if !ok {
		return nil, &UnknownFunctionError{Name: name}
	}
	return fn, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[name]
	return ok
}

// Invoke calls the function registered under name. Failures of the callee,
// including panics, are returned as *InvocationError.
func (r *Registry) Invoke(ctx context.Context, name string, args ...any) (result any, err error) {
	fn, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = &InvocationError{Name: name, Cause: fmt.Errorf("panic: %v", p)}
		}
	}()

	result, err = fn(ctx, args...)
	if err != nil {
		return nil, &InvocationError{Name: name, Cause: err}
	}
	return result, nil
}

// Names returns all registered function names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

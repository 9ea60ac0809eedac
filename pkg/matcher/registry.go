package matcher

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrNotFound is returned by Registry.Resolve for unregistered codes.
var ErrNotFound = errors.New("matcher not found")

// Built-in matcher codes.
const (
	CodeEquals     = "equals"
	CodeAny        = "any"
	CodeBetween    = "between"
	CodeBetweenIE  = "between/ie"
	CodeBetweenII  = "between/ii"
	CodeBetweenEI  = "between/ei"
	CodeBetweenEE  = "between/ee"
	CodeRegex      = "regex"
	CodeIn         = "in"
	CodeContains   = "contains"
	CodeContainsCI = "contains/i"
)

// Registry maps matcher codes to Matcher instances.
type Registry struct {
	mu       sync.RWMutex
	matchers map[string]Matcher
}

// NewRegistry returns a registry holding the built-in matchers.
func NewRegistry() *Registry {
	betweenIE := Between(true, false)
	return &Registry{
		matchers: map[string]Matcher{
			CodeEquals:     Equals(),
			CodeAny:        Any(),
			CodeBetween:    betweenIE,
			CodeBetweenIE:  betweenIE,
			CodeBetweenII:  Between(true, true),
			CodeBetweenEI:  Between(false, true),
			CodeBetweenEE:  Between(false, false),
			CodeRegex:      Regex(),
			CodeIn:         Set(","),
			CodeContains:   Contains(false),
			CodeContainsCI: Contains(true),
		},
	}
}

// Register binds code to m. Registering a code twice is an error.
func (r *Registry) Register(code string, m Matcher) error {
	if code == "" {
		return fmt.Errorf("matcher code cannot be empty")
	}
	if m == nil {
		return fmt.Errorf("matcher %q cannot be nil", code)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.matchers[code]; exists {
		return fmt.Errorf("matcher %q already registered", code)
	}
	r.matchers[code] = m
	return nil
}

// Resolve returns the matcher registered under code.
func (r *Registry) Resolve(code string) (Matcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matchers[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, code)
	}
	return m, nil
}

// Codes returns all registered codes in sorted order.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.matchers))
	for code := range r.matchers {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

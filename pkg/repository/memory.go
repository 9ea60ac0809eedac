package repository

import (
	"context"
	"slices"
	"sync"

	"mercator-hq/paramengine/pkg/model"
)

// Memory is an in-memory repository.
type Memory struct {
	mu     sync.RWMutex
	params map[string]*model.Parameter
}

// NewMemory creates a repository holding copies of params.
func NewMemory(params ...*model.Parameter) *Memory {
	m := &Memory{params: make(map[string]*model.Parameter, len(params))}
	for _, p := range params {
		m.params[p.Name] = p.Clone()
	}
	return m
}

// Load returns a copy of the named parameter.
func (m *Memory) Load(_ context.Context, name string) (*model.ParameterBatch, error) {
	m.mu.RLock()
	p, ok := m.params[name]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound(name)
	}

	c := p.Clone()
	return &model.ParameterBatch{Parameter: c.Header(), Loader: model.NewSliceLoader(c.Entries)}, nil
}

// List returns the stored names in sorted order.
func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.params))
	for name := range m.params {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Save stores a copy of p after validating it.
func (m *Memory) Save(_ context.Context, p *model.Parameter) error {
	if err := p.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.params[p.Name] = p.Clone()
	return nil
}

// Delete removes the named parameter.
func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.params[name]; !ok {
		return notFound(name)
	}
	delete(m.params, name)
	return nil
}

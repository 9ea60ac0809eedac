package engine

import (
	"fmt"

	"mercator-hq/paramengine/pkg/index"
)

// ParamContext carries the inputs of one query: named attributes for level
// creator functions and, once known, the level value vector.
// It is not safe for concurrent use.
type ParamContext struct {
	attributes  map[string]any
	levelValues []any
	overrides   *index.Overrides
	extraction  *index.Extraction
}

// NewParamContext creates an empty context.
func NewParamContext() *ParamContext {
	return &ParamContext{attributes: make(map[string]any)}
}

// LevelValues creates a context with explicit level values.
func LevelValues(values ...any) *ParamContext {
	c := NewParamContext()
	if values == nil {
		values = []any{}
	}
	c.levelValues = values
	return c
}

// Set stores a named attribute.
func (c *ParamContext) Set(name string, value any) *ParamContext {
	c.attributes[name] = value
	return c
}

// Get returns a named attribute.
func (c *ParamContext) Get(name string) (any, bool) {
	v, ok := c.attributes[name]
	return v, ok
}

// Attributes returns the attribute map. Callers must not modify it.
func (c *ParamContext) Attributes() map[string]any {
	return c.attributes
}

// WithLevelValues sets explicit level values, skipping level creators.
func (c *ParamContext) WithLevelValues(values ...any) *ParamContext {
	if values == nil {
		values = []any{}
	}
	c.levelValues = values
	return c
}

// LevelValues returns the level value vector, or nil when it has not been
// supplied or derived yet.
func (c *ParamContext) LevelValues() []any {
	return c.levelValues
}

// WithOverrides sets per-level traversal overrides for this query.
func (c *ParamContext) WithOverrides(o *index.Overrides) *ParamContext {
	c.overrides = o
	return c
}

// Overrides returns the traversal overrides, possibly nil.
func (c *ParamContext) Overrides() *index.Overrides {
	return c.overrides
}

// WithExtraction selects the extraction policy for this query.
func (c *ParamContext) WithExtraction(e index.Extraction) *ParamContext {
	c.extraction = &e
	return c
}

// String returns a debug representation.
func (c *ParamContext) String() string {
	return fmt.Sprintf("ParamContext{attributes: %v, levelValues: %v}", c.attributes, c.levelValues)
}

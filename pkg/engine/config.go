package engine

import (
	"fmt"

	"mercator-hq/paramengine/pkg/index"
)

// EngineConfig contains configuration for the engine.
type EngineConfig struct {
	// Extraction is the leaf extraction policy used when a ParamContext does
	// not choose one.
	// Default: index.ExtractAll.
	Extraction index.Extraction

	// TraceLevelValues adds normalized level values to query spans.
	// Default: false.
	TraceLevelValues bool
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Extraction: index.ExtractAll,
	}
}

// Validate validates the engine configuration.
func (c *EngineConfig) Validate() error {
	switch c.Extraction {
	case index.ExtractAll, index.ExtractBest:
	default:
		return fmt.Errorf("%w: invalid extraction policy %d", ErrInvalidConfig, c.Extraction)
	}
	return nil
}

// WithExtraction sets the default extraction policy.
func (c *EngineConfig) WithExtraction(e index.Extraction) *EngineConfig {
	c.Extraction = e
	return c
}

// WithTraceLevelValues enables or disables level values on spans.
func (c *EngineConfig) WithTraceLevelValues(enabled bool) *EngineConfig {
	c.TraceLevelValues = enabled
	return c
}

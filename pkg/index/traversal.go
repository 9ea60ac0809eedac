package index

import (
	"mercator-hq/paramengine/pkg/matcher"
	"mercator-hq/paramengine/pkg/types"
)

// Strategy selects how one depth of the index is inspected.
type Strategy uint8

const (
	// Fast descends into the exact child, falling back to the wildcard.
	Fast Strategy = iota
	// Greedy descends into every child accepted by the matcher.
	Greedy
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case Fast:
		return "fast"
	case Greedy:
		return "greedy"
	default:
		return "unknown"
	}
}

// DefaultStrategy returns Fast for exact matchers and Greedy otherwise.
func DefaultStrategy(m matcher.Matcher) Strategy {
	if matcher.IsExact(m) {
		return Fast
	}
	return Greedy
}

// LevelConfig holds the bindings used at one depth.
type LevelConfig struct {
	Name     string
	Type     types.Type
	Matcher  matcher.Matcher
	Strategy Strategy
	Array    bool
}

// TraversalConfig holds per-depth bindings for a walk or scan.
type TraversalConfig struct {
	Levels    []LevelConfig
	Separator rune
}

// Position returns the depth of the level called name.
func (c TraversalConfig) Position(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	for i, l := range c.Levels {
		if l.Name == name {
			return i, true
		}
	}
	return 0, false
}

// WithOverrides returns a copy of c with o applied. The receiver is not
// modified, so compiled configs can be shared across queries.
func (c TraversalConfig) WithOverrides(o *Overrides) (TraversalConfig, error) {
	if o.IsEmpty() {
		return c, nil
	}

	out := TraversalConfig{
		Levels:    append([]LevelConfig(nil), c.Levels...),
		Separator: c.Separator,
	}

	for name, m := range o.matchers {
		pos, ok := c.Position(name)
		if !ok {
			return c, &UnknownLevelError{Level: name}
		}
		out.Levels[pos].Matcher = m
		out.Levels[pos].Strategy = DefaultStrategy(m)
	}

	if o.allGreedy {
		for i := range out.Levels {
			out.Levels[i].Strategy = Greedy
		}
	}

	for name, s := range o.strategies {
		pos, ok := c.Position(name)
		if !ok {
			return c, &UnknownLevelError{Level: name}
		}
		out.Levels[pos].Strategy = s
	}

	return out, nil
}

// Overrides customizes strategy and matcher per level name for a single
// query. A nil *Overrides is empty.
type Overrides struct {
	strategies map[string]Strategy
	matchers   map[string]matcher.Matcher
	allGreedy  bool
}

// NewOverrides creates an empty override set.
func NewOverrides() *Overrides {
	return &Overrides{
		strategies: make(map[string]Strategy),
		matchers:   make(map[string]matcher.Matcher),
	}
}

// SetStrategy forces strategy s at the named level.
func (o *Overrides) SetStrategy(level string, s Strategy) *Overrides {
	o.strategies[level] = s
	return o
}

// SetGreedy forces Greedy traversal at the named level.
func (o *Overrides) SetGreedy(level string) *Overrides {
	return o.SetStrategy(level, Greedy)
}

// SetAllGreedy forces Greedy traversal at every level without an explicit
// strategy override.
func (o *Overrides) SetAllGreedy() *Overrides {
	o.allGreedy = true
	return o
}

// SetMatcher replaces the matcher at the named level. Unless a strategy is
// also set, the level's strategy follows the new matcher.
func (o *Overrides) SetMatcher(level string, m matcher.Matcher) *Overrides {
	o.matchers[level] = m
	return o
}

// IsEmpty reports whether o changes nothing.
func (o *Overrides) IsEmpty() bool {
	return o == nil || (len(o.strategies) == 0 && len(o.matchers) == 0 && !o.allGreedy)
}

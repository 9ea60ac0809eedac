package prepared

import (
	"time"

	"github.com/google/uuid"

	"mercator-hq/paramengine/pkg/index"
	"mercator-hq/paramengine/pkg/matcher"
	"mercator-hq/paramengine/pkg/model"
	"mercator-hq/paramengine/pkg/types"
)

// Level is a level with its codes resolved.
type Level struct {
	Name         string
	Type         types.Type // nil for untyped levels
	Matcher      matcher.Matcher
	MatcherCode  string
	Array        bool
	LevelCreator string
}

// Parameter is the compiled, immutable form of a rule table. It is safe for
// concurrent use. It holds an index iff it is cacheable; otherwise it keeps
// its entries for linear scanning.
type Parameter struct {
	Name        string
	Version     uuid.UUID
	CompiledAt  time.Time
	Levels      []Level
	InputLevels int
	Nullable    bool
	Cacheable   bool
	Separator   rune

	levelNames map[string]int
	traversal  index.TraversalConfig
	index      *index.LevelIndex[model.Entry]
	rows       []index.Row[model.Entry]
	entries    int
}

// LevelIndex returns the position of the named level.
func (p *Parameter) LevelIndex(name string) (int, bool) {
	i, ok := p.levelNames[name]
	return i, ok
}

// Index returns the compiled index, or nil for non-cacheable parameters.
func (p *Parameter) Index() *index.LevelIndex[model.Entry] {
	return p.index
}

// Traversal returns the compiled per-level traversal bindings.
func (p *Parameter) Traversal() index.TraversalConfig {
	return p.traversal
}

// EntryCount returns the number of compiled entries.
func (p *Parameter) EntryCount() int {
	return p.entries
}

// OutputLevels returns the number of output columns.
func (p *Parameter) OutputLevels() int {
	return len(p.Levels) - p.InputLevels
}

// Find resolves normalized input values with cfg, walking the index when
// there is one and scanning the entries otherwise.
func (p *Parameter) Find(cfg index.TraversalConfig, values []string) ([]index.Hit[model.Entry], error) {
	if p.index != nil {
		return p.index.Walk(cfg, values)
	}
	return index.Scan(p.rows, cfg, values)
}

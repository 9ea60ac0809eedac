package index

import (
	"slices"
	"strings"

	"mercator-hq/paramengine/pkg/matcher"
)

// Hit is one node reached by a walk: the rows of its subtree and the rank of
// the key chosen at each depth on the way down.
type Hit[T any] struct {
	Leaves []T
	Ranks  []float64
}

// cursor abstracts a node so the same walker serves the arena index and the
// linear scan.
type cursor[T any] interface {
	keys() []string
	childAt(i int) cursor[T]
	child(key string) (cursor[T], bool)
	wildcard() (cursor[T], bool)
	leaves() []T
}

type walker[T any] struct {
	cfg    TraversalConfig
	values []string
	hits   []Hit[T]
	ranks  []float64
}

func newWalker[T any](cfg TraversalConfig, values []string) *walker[T] {
	return &walker[T]{
		cfg:    cfg,
		values: values,
		ranks:  make([]float64, 0, len(values)),
	}
}

// visit inspects c at depth and returns the number of hits it produced.
func (w *walker[T]) visit(c cursor[T], depth int) int {
	if depth >= len(w.values) {
		leaves := c.leaves()
		if len(leaves) == 0 {
			return 0
		}
		w.hits = append(w.hits, Hit[T]{Leaves: leaves, Ranks: slices.Clone(w.ranks)})
		return 1
	}

	level := w.cfg.Levels[depth]
	inputs := w.inputs(depth, level)
	if level.Strategy == Greedy {
		return w.greedy(c, depth, level, inputs)
	}
	return w.fast(c, depth, inputs)
}

func (w *walker[T]) fast(c cursor[T], depth int, inputs []string) int {
	found := 0
	for i, in := range inputs {
		if in == matcher.Wildcard || slices.Contains(inputs[:i], in) {
			continue
		}
		if child, ok := c.child(in); ok {
			found += w.descend(child, depth, 0)
		}
	}
	if found == 0 {
		if wc, ok := c.wildcard(); ok {
			found += w.descend(wc, depth, matcher.WildcardRank)
		}
	}
	return found
}

func (w *walker[T]) greedy(c cursor[T], depth int, level LevelConfig, inputs []string) int {
	found := 0
	for i, key := range c.keys() {
		if !matchesAny(level, key, inputs) {
			continue
		}
		rank := 0.0
		if level.Matcher != nil {
			rank = matcher.Rank(level.Matcher, key, level.Type)
		}
		found += w.descend(c.childAt(i), depth, rank)
	}
	if wc, ok := c.wildcard(); ok {
		found += w.descend(wc, depth, matcher.WildcardRank)
	}
	return found
}

func (w *walker[T]) descend(c cursor[T], depth int, rank float64) int {
	w.ranks = append(w.ranks, rank)
	found := w.visit(c, depth+1)
	w.ranks = w.ranks[:len(w.ranks)-1]
	return found
}

// inputs splits array level values into their elements.
func (w *walker[T]) inputs(depth int, level LevelConfig) []string {
	value := w.values[depth]
	if !level.Array {
		return []string{value}
	}
	sep := w.cfg.Separator
	if sep == 0 {
		sep = ','
	}
	parts := strings.Split(value, string(sep))
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func matchesAny(level LevelConfig, key string, inputs []string) bool {
	for _, in := range inputs {
		if level.Matcher == nil {
			if key == in {
				return true
			}
			continue
		}
		if level.Matcher.Matches(key, in, level.Type) {
			return true
		}
	}
	return false
}

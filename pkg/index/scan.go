package index

import (
	"slices"

	"mercator-hq/paramengine/pkg/matcher"
)

// Row is an unindexed row: its input keys and its payload.
type Row[T any] struct {
	Keys []string
	Leaf T
}

// Scan resolves values against rows without an index. Rows are partitioned
// level by level only along the branches the strategies accept, and a row is
// dropped at the first level where it does not match. The result equals
// Walk over an index built from the same rows.
func Scan[T any](rows []Row[T], cfg TraversalConfig, values []string) ([]Hit[T], error) {
	depth := len(cfg.Levels)
	if len(values) > depth {
		return nil, &TooManyValuesError{Depth: depth, Values: len(values)}
	}
	for _, r := range rows {
		if len(r.Keys) != depth {
			return nil, &DepthMismatchError{Want: len(r.Keys), Got: depth}
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	w := newWalker[T](cfg, values)
	w.visit(&group[T]{rows: rows, depth: 0, max: depth}, 0)
	return w.hits, nil
}

// group is the set of rows sharing a key prefix of length depth.
type group[T any] struct {
	rows  []Row[T]
	depth int
	max   int

	split    bool
	sorted   []string
	literals map[string]*group[T]
	wild     *group[T]
}

func (g *group[T]) partition() {
	if g.split {
		return
	}
	g.split = true
	g.literals = make(map[string]*group[T])
	for _, r := range g.rows {
		key := r.Keys[g.depth]
		if key == matcher.Wildcard {
			if g.wild == nil {
				g.wild = &group[T]{depth: g.depth + 1, max: g.max}
			}
			g.wild.rows = append(g.wild.rows, r)
			continue
		}
		child := g.literals[key]
		if child == nil {
			child = &group[T]{depth: g.depth + 1, max: g.max}
			g.literals[key] = child
			g.sorted = append(g.sorted, key)
		}
		child.rows = append(child.rows, r)
	}
	slices.Sort(g.sorted)
}

func (g *group[T]) keys() []string {
	if g.depth >= g.max {
		return nil
	}
	g.partition()
	return g.sorted
}

func (g *group[T]) childAt(i int) cursor[T] {
	return g.literals[g.sorted[i]]
}

func (g *group[T]) child(key string) (cursor[T], bool) {
	if g.depth >= g.max {
		return nil, false
	}
	g.partition()
	c, ok := g.literals[key]
	if !ok {
		return nil, false
	}
	return c, true
}

func (g *group[T]) wildcard() (cursor[T], bool) {
	if g.depth >= g.max {
		return nil, false
	}
	g.partition()
	if g.wild == nil {
		return nil, false
	}
	return g.wild, true
}

// leaves returns the group's rows in the order an index would store them.
func (g *group[T]) leaves() []T {
	if g.depth >= g.max {
		out := make([]T, len(g.rows))
		for i, r := range g.rows {
			out[i] = r.Leaf
		}
		return out
	}

	g.partition()
	out := make([]T, 0, len(g.rows))
	for _, key := range g.sorted {
		out = append(out, g.literals[key].leaves()...)
	}
	if g.wild != nil {
		out = append(out, g.wild.leaves()...)
	}
	return out
}

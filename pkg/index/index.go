package index

const noChild int32 = -1

type node struct {
	keys     []string // sorted literal keys
	children []int32  // parallel to keys
	lookup   map[string]int32
	wildcard int32

	// leaves of the whole subtree are ix.leaves[start:end]
	start, end int32
}

// LevelIndex is the immutable compiled tree. It is safe for concurrent use.
type LevelIndex[T any] struct {
	depth  int
	nodes  []node
	leaves []T
}

// Depth returns the number of keyed levels.
func (ix *LevelIndex[T]) Depth() int { return ix.depth }

// Stats describes the size of an index.
type Stats struct {
	Depth  int
	Nodes  int
	Leaves int
}

// Stats returns size information.
func (ix *LevelIndex[T]) Stats() Stats {
	return Stats{Depth: ix.depth, Nodes: len(ix.nodes), Leaves: len(ix.leaves)}
}

// Walk resolves values against the index using cfg, which must describe
// exactly Depth levels. len(values) may be less than Depth.
func (ix *LevelIndex[T]) Walk(cfg TraversalConfig, values []string) ([]Hit[T], error) {
	if len(cfg.Levels) != ix.depth {
		return nil, &DepthMismatchError{Want: ix.depth, Got: len(cfg.Levels)}
	}
	if len(values) > ix.depth {
		return nil, &TooManyValuesError{Depth: ix.depth, Values: len(values)}
	}
	if len(ix.nodes) == 0 {
		return nil, nil
	}
	w := newWalker[T](cfg, values)
	w.visit(treeCursor[T]{ix: ix, id: 0}, 0)
	return w.hits, nil
}

// treeCursor exposes one arena node to the walker.
type treeCursor[T any] struct {
	ix *LevelIndex[T]
	id int32
}

func (c treeCursor[T]) keys() []string {
	return c.ix.nodes[c.id].keys
}

func (c treeCursor[T]) childAt(i int) cursor[T] {
	return treeCursor[T]{ix: c.ix, id: c.ix.nodes[c.id].children[i]}
}

func (c treeCursor[T]) child(key string) (cursor[T], bool) {
	id, ok := c.ix.nodes[c.id].lookup[key]
	if !ok {
		return nil, false
	}
	return treeCursor[T]{ix: c.ix, id: id}, true
}

func (c treeCursor[T]) wildcard() (cursor[T], bool) {
	id := c.ix.nodes[c.id].wildcard
	if id == noChild {
		return nil, false
	}
	return treeCursor[T]{ix: c.ix, id: id}, true
}

func (c treeCursor[T]) leaves() []T {
	n := c.ix.nodes[c.id]
	return c.ix.leaves[n.start:n.end:n.end]
}

package index

import (
	"fmt"
	"slices"

	"mercator-hq/paramengine/pkg/matcher"
)

// Builder grows a mutable tree. It is used only while compiling and must not
// be shared between goroutines.
type Builder[T any] struct {
	depth int
	root  *buildNode[T]
	rows  int
}

type buildNode[T any] struct {
	children map[string]*buildNode[T]
	wildcard *buildNode[T]
	leaves   []T
}

func newBuildNode[T any]() *buildNode[T] {
	return &buildNode[T]{children: make(map[string]*buildNode[T])}
}

// NewBuilder creates a builder for an index with depth levels.
func NewBuilder[T any](depth int) *Builder[T] {
	return &Builder[T]{depth: depth, root: newBuildNode[T]()}
}

// Add stores leaf under the path given by keys. A "*" key is routed to the
// wildcard branch. Duplicate paths keep every leaf in insertion order.
func (b *Builder[T]) Add(keys []string, leaf T) error {
	if len(keys) != b.depth {
		return fmt.Errorf("row has %d keys, index depth is %d", len(keys), b.depth)
	}

	n := b.root
	for _, key := range keys {
		var next *buildNode[T]
		if key == matcher.Wildcard {
			if n.wildcard == nil {
				n.wildcard = newBuildNode[T]()
			}
			next = n.wildcard
		} else {
			next = n.children[key]
			if next == nil {
				next = newBuildNode[T]()
				n.children[key] = next
			}
		}
		n = next
	}
	n.leaves = append(n.leaves, leaf)
	b.rows++
	return nil
}

// Build flattens the tree into an immutable index. The builder is reset and
// may be reused.
func (b *Builder[T]) Build() *LevelIndex[T] {
	ix := &LevelIndex[T]{
		depth:  b.depth,
		leaves: make([]T, 0, b.rows),
	}
	ix.flatten(b.root)

	b.root = newBuildNode[T]()
	b.rows = 0
	return ix
}

// flatten appends bn and its subtree depth first, literal children in key
// order before the wildcard child, so every subtree's leaves are contiguous.
func (ix *LevelIndex[T]) flatten(bn *buildNode[T]) int32 {
	id := int32(len(ix.nodes))
	ix.nodes = append(ix.nodes, node{wildcard: noChild})
	start := int32(len(ix.leaves))
	ix.leaves = append(ix.leaves, bn.leaves...)

	keys := make([]string, 0, len(bn.children))
	for key := range bn.children {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	children := make([]int32, len(keys))
	var lookup map[string]int32
	if len(keys) > 0 {
		lookup = make(map[string]int32, len(keys))
	}
	for i, key := range keys {
		children[i] = ix.flatten(bn.children[key])
		lookup[key] = children[i]
	}

	wildcard := noChild
	if bn.wildcard != nil {
		wildcard = ix.flatten(bn.wildcard)
	}

	ix.nodes[id] = node{
		keys:     keys,
		children: children,
		lookup:   lookup,
		wildcard: wildcard,
		start:    start,
		end:      int32(len(ix.leaves)),
	}
	return id
}

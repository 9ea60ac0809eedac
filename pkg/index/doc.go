// Package index implements the level index: an immutable tree of depth N
// keyed by the canonical text of each input level, with a distinguished
// wildcard branch per node and row payloads at the terminal depth.
//
// An index is produced in two phases. A Builder accepts rows and grows a
// mutable tree; Build flattens it into an arena of nodes addressed by
// position, which is never mutated again and can be walked by any number
// of goroutines without locking.
//
// # Traversal
//
// Walk descends the index one depth per supplied value. Each depth uses one
// of two strategies:
//
//   - Fast looks up the exact child for the input (or for each element of an
//     array input) and falls back to the wildcard child when that yields no
//     rows.
//   - Greedy evaluates the depth's matcher against every literal child, in
//     ascending key order, and then always descends into the wildcard child.
//
// Every node reached once the values are exhausted contributes all rows of
// its subtree as one Hit. Supplying fewer values than the index depth is
// therefore a prefix lookup.
//
// Scan answers the same queries over a plain row slice without building an
// index, with the same result set and order.
package index

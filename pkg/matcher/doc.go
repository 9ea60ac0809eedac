// Package matcher decides whether an input level value satisfies a pattern
// stored in a rule table.
//
// A Matcher is a pure predicate over two canonical strings, the stored
// pattern and the normalized input, interpreted through the level's Type.
// Matchers that also implement Ranker order simultaneously matching patterns
// by specificity; the wildcard always ranks lowest.
//
// # Built-in Matchers
//
//	equals        pattern equals input (typed comparison when both parse)
//	any           always matches
//	between/ie    lo:hi range, lower bound inclusive, upper bound exclusive ("between" is an alias)
//	between/ii    lo:hi range, both bounds inclusive
//	between/ei    lo:hi range, lower bound exclusive, upper bound inclusive
//	between/ee    lo:hi range, both bounds exclusive
//	regex         pattern is a regular expression that must match the whole input
//	in            pattern is a comma separated set; input must equal one element
//	contains      pattern is a |-separated list of substrings; input must contain one
//	contains/i    as contains, ASCII case-insensitive
//
// Range bounds may be left empty or set to "*" to leave that side open.
//
// Hosts add their own matchers with Registry.Register before compiling tables.
package matcher

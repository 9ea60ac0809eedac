// Package prepared compiles raw parameters into their query-ready form and
// caches the result.
//
// A Compiler binds every level's type and matcher codes to live instances
// and, for cacheable parameters, builds the level index. Compilation either
// succeeds completely or returns an error; a partially compiled parameter is
// never returned.
//
// A Preparer loads parameters from a Source on first use, compiles them once
// and serves the compiled value to concurrent queries. Cached parameters are
// published through an atomically swapped snapshot, so a query always sees
// one consistent version of a table even while it is being recompiled.
package prepared

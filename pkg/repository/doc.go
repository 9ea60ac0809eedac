// Package repository provides sources of raw parameters for the compiler:
//
//   - Memory holds parameters in a map, for tests and embedding.
//   - File reads one YAML document per parameter from a directory, and
//     Watcher reports changes to that directory.
//   - SQL stores parameters, levels and entries in sqlite (modernc.org/sqlite
//     or mattn/go-sqlite3) or postgres (lib/pq).
//   - CSVDir reads parameters serialized as CSV, optionally zstd compressed.
//
// Every repository returns entries through a model.EntryBatchLoader so that
// large tables are streamed in batches. Copy transfers parameters between
// repositories.
package repository

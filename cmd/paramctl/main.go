// paramctl resolves, inspects and serves rule-table parameters.
//
// A parameter is a table whose leading input levels are matched against a
// query's level values and whose trailing output levels form the answer.
// paramctl loads parameters from the configured repository (YAML directory,
// CSV directory, SQL database or memory), compiles them into indexes and
// answers queries from the command line or over HTTP.
//
// Usage:
//
//	# Resolve a parameter with explicit level values
//	paramctl get discount gold EU
//
//	# Resolve with level creators evaluated from attributes
//	paramctl get discount --attr tier=gold --attr region=EU
//
//	# Validate and compile every parameter
//	paramctl lint
//
//	# Show index statistics
//	paramctl inspect discount
//
//	# Move tables between CSV files and the repository
//	paramctl import tables/*.csv.zst
//	paramctl export --out backup/ --compress
//
//	# Serve queries, metrics and health probes over HTTP
//	paramctl serve --config paramengine.yaml
package main

func main() {
	Execute()
}

// Package server exposes a parameter engine over HTTP.
//
// # Routes
//
//   - GET  /v1/parameters/{name}           query with URL parameters
//   - POST /v1/parameters/{name}           query with a JSON body
//   - POST /v1/functions/{name}            call a registered function
//   - GET  /health, /ready, /version       probes (see package health)
//   - GET  <metrics path>                  Prometheus metrics, when enabled
//
// A GET query passes level values as repeated "level" parameters, attributes
// as "attr.<name>" parameters, per-level greedy overrides as repeated
// "greedy" parameters ("*" for every level) and the extraction policy as
// "extraction". Without any "level" parameter the level values are derived
// from the attributes by the parameter's level creators:
//
//	GET /v1/parameters/discount?level=gold&level=EU&extraction=best
//	GET /v1/parameters/discount?attr.tier=gold&attr.region=EU
//
// The POST body carries the same fields:
//
//	{"levels": ["gold", "EU"], "greedy": ["region"], "extraction": "best"}
//
// Responses hold the output columns and typed rows:
//
//	{"parameter": "discount", "columns": ["rate"], "rows": [[0.15]]}
//
// # Errors
//
// Unknown parameters and functions answer 404, as do non-nullable
// parameters with no matching entry, including a level creator that names
// an unregistered function. Malformed level vectors answer 400 and failures
// while evaluating a query (level creators, type coercion) 422. A parameter
// whose definition does not compile answers 500 with type
// "invalid_parameter".
// Error bodies are {"error": {"type": ..., "message": ...}}.
//
// # Middleware
//
// Requests pass through, outermost first: recovery, logging, request ID,
// trace context extraction and a per-request timeout. When server.api_keys
// is configured the /v1 routes also require a key, sent as a bearer token
// or in the X-API-Key header; probes and metrics stay open.
package server

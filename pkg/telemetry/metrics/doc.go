// Package metrics exposes engine activity as Prometheus metrics.
//
// A Collector implements engine.Recorder and prepared.Observer, so it is
// attached with:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	eng.SetRecorder(collector)
//	compiler.SetObserver(collector)
//	collector.RegisterCacheSize(func() int { return len(preparer.Cached()) })
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// # Metrics
//
//   - queries_total{parameter,outcome}: Get calls by outcome (hit, empty, error)
//   - query_duration_seconds{parameter}: Get latency
//   - query_rows: rows returned per successful query
//   - function_calls_total{function,outcome}: level creator and function calls
//   - function_duration_seconds{function}: function latency
//   - compilations_total{parameter,status}: compile attempts
//   - compile_duration_seconds{parameter}: compile latency
//   - compiled_entries{parameter}: entries in the last compiled version
//   - cached_parameters: parameters held by the preparer
//
// Parameter and function names are label values; once MaxLabelValues distinct
// names have been seen, further names are reported as "other".
package metrics

// Package engine is the query surface of the parameter engine.
//
// An Engine resolves a named parameter against a ParamContext:
//
//  1. the compiled parameter is obtained from the Provider
//  2. missing level values are derived by calling each level's level creator
//     function with the context
//  3. the number of values is checked against the parameter's input levels
//  4. every value is normalized to its level type's canonical text
//  5. the index is walked, or the entries scanned for non-cacheable tables
//  6. an empty result is returned for nullable parameters, otherwise
//     ParameterValueNotFoundError
//  7. matching rows are returned as a ParamValue of typed output columns
//
// Basic usage:
//
//	eng, err := engine.New(engine.DefaultEngineConfig(), preparer, functions, logger)
//	if err != nil {
//		return err
//	}
//
//	value, err := eng.GetValues(ctx, "discount", "EU", 15)
//	if err != nil {
//		return err
//	}
//	rate, _ := value.Holder().AsFloat64()
//
// The engine holds no per-query state. Each ParamContext belongs to a single
// query and must not be shared between goroutines.
package engine

// Package types converts between the textual form of level values stored in
// rule tables and typed in-memory values.
//
// Every level of a parameter is bound to a Type by its code. The built-in
// codes are:
//
//   - "string"  - text, kept verbatim
//   - "integer" - signed 64-bit integers
//   - "decimal" - floating point numbers (a comma is accepted as decimal separator)
//   - "boolean" - true/false, yes/no, 1/0
//   - "date"    - calendar dates, formatted as 2006-01-02
//
// Host applications register additional types on a Registry before any table
// is compiled:
//
//	reg := types.NewRegistry()
//	if err := reg.Register("currency", currencyType{}); err != nil {
//	    return err
//	}
//
// # Round Trips
//
// Format is the left inverse of Parse for every value produced by Parse, so
// parse(format(parse(text))) always equals parse(text). Level values are
// normalized through this round trip before they are compared with table
// contents.
package types

package engine

import (
	"time"

	"mercator-hq/paramengine/pkg/types"
)

// ParamValue is the result of a query: the matching rows projected onto the
// parameter's output levels, in match order.
type ParamValue struct {
	parameter string
	columns   []string
	positions map[string]int
	rows      [][]types.Value
}

func emptyValue(parameter string, columns []string) *ParamValue {
	positions := make(map[string]int, len(columns))
	for i, name := range columns {
		if name != "" {
			positions[name] = i
		}
	}
	return &ParamValue{parameter: parameter, columns: columns, positions: positions}
}

// Parameter returns the name of the queried parameter.
func (v *ParamValue) Parameter() string { return v.parameter }

// Columns returns the output level names.
func (v *ParamValue) Columns() []string { return v.columns }

// Len returns the number of rows.
func (v *ParamValue) Len() int { return len(v.rows) }

// IsEmpty reports whether no row matched.
func (v *ParamValue) IsEmpty() bool { return len(v.rows) == 0 }

// Rows returns all rows.
func (v *ParamValue) Rows() [][]types.Value { return v.rows }

// Row returns row i, or nil when out of range.
func (v *ParamValue) Row(i int) []types.Value {
	if i < 0 || i >= len(v.rows) {
		return nil
	}
	return v.rows[i]
}

// Get returns column col of the first row.
func (v *ParamValue) Get(col int) (types.Value, bool) {
	row := v.Row(0)
	if col < 0 || col >= len(row) {
		return types.Value{}, false
	}
	return row[col], true
}

// GetByName returns the named column of the first row.
func (v *ParamValue) GetByName(name string) (types.Value, bool) {
	col, ok := v.positions[name]
	if !ok {
		return types.Value{}, false
	}
	return v.Get(col)
}

// Holder returns the first column of the first row. An empty result yields a
// null string value.
func (v *ParamValue) Holder() types.Value {
	h, ok := v.Get(0)
	if !ok {
		return types.NullValue(types.KindString)
	}
	return h
}

// AsString returns the holder as a string.
func (v *ParamValue) AsString() (string, bool) { return v.Holder().AsString() }

// AsInt64 returns the holder as an integer.
func (v *ParamValue) AsInt64() (int64, bool) { return v.Holder().AsInt64() }

// AsFloat64 returns the holder as a float.
func (v *ParamValue) AsFloat64() (float64, bool) { return v.Holder().AsFloat64() }

// AsBool returns the holder as a bool.
func (v *ParamValue) AsBool() (bool, bool) { return v.Holder().AsBool() }

// AsTime returns the holder as a date.
func (v *ParamValue) AsTime() (time.Time, bool) { return v.Holder().AsTime() }

// Column returns column col of every row.
func (v *ParamValue) Column(col int) []types.Value {
	out := make([]types.Value, 0, len(v.rows))
	for _, row := range v.rows {
		if col >= 0 && col < len(row) {
			out = append(out, row[col])
		}
	}
	return out
}

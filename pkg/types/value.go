package types

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	// KindString holds text.
	KindString Kind = iota
	// KindInteger holds an int64.
	KindInteger
	// KindDecimal holds a float64.
	KindDecimal
	// KindBoolean holds a bool.
	KindBoolean
	// KindDate holds a time.Time truncated to the day.
	KindDate
	// KindCustom holds an arbitrary value produced by a host-registered Type.
	KindCustom
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a typed holder for a single level or output value.
// The zero Value is a null string.
type Value struct {
	kind  Kind
	null  bool
	str   string
	num   int64
	dec   float64
	flag  bool
	date  time.Time
	other any
}

// StringValue returns a string holder.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// IntegerValue returns an integer holder.
func IntegerValue(i int64) Value { return Value{kind: KindInteger, num: i} }

// DecimalValue returns a decimal holder.
func DecimalValue(f float64) Value { return Value{kind: KindDecimal, dec: f} }

// BooleanValue returns a boolean holder.
func BooleanValue(b bool) Value { return Value{kind: KindBoolean, flag: b} }

// DateValue returns a date holder. The time is truncated to the calendar day in UTC.
func DateValue(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// CustomValue returns a holder for a value produced by a host type.
func CustomValue(v any) Value { return Value{kind: KindCustom, other: v, null: v == nil} }

// NullValue returns a null holder of the given kind.
func NullValue(kind Kind) Value { return Value{kind: kind, null: true} }

// Kind returns the variant held.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the holder carries no value.
func (v Value) IsNull() bool { return v.null }

// AsString returns the text of a string holder.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString || v.null {
		return "", false
	}
	return v.str, true
}

// AsInt64 returns the value of an integer holder.
func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindInteger || v.null {
		return 0, false
	}
	return v.num, true
}

// AsFloat64 returns the numeric value of an integer or decimal holder.
func (v Value) AsFloat64() (float64, bool) {
	if v.null {
		return 0, false
	}
	switch v.kind {
	case KindDecimal:
		return v.dec, true
	case KindInteger:
		return float64(v.num), true
	default:
		return 0, false
	}
}

// AsBool returns the value of a boolean holder.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBoolean || v.null {
		return false, false
	}
	return v.flag, true
}

// AsTime returns the value of a date holder.
func (v Value) AsTime() (time.Time, bool) {
	if v.kind != KindDate || v.null {
		return time.Time{}, false
	}
	return v.date, true
}

// Interface returns the held value as a plain Go value, or nil for null holders.
func (v Value) Interface() any {
	if v.null {
		return nil
	}
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return v.num
	case KindDecimal:
		return v.dec
	case KindBoolean:
		return v.flag
	case KindDate:
		return v.date
	default:
		return v.other
	}
}

// String renders the value for diagnostics. Use Type.Format for the canonical
// textual form.
func (v Value) String() string {
	if v.null {
		return "null"
	}
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	case KindDecimal:
		return strconv.FormatFloat(v.dec, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.flag)
	case KindDate:
		return v.date.Format(DateLayout)
	default:
		return fmt.Sprint(v.other)
	}
}

// Equal reports whether two holders carry the same logical value.
// Integer and decimal holders compare numerically.
func Equal(a, b Value) bool {
	if a.null || b.null {
		return a.null && b.null
	}
	c, err := Compare(a, b)
	if err != nil {
		if a.kind == KindCustom && b.kind == KindCustom {
			return fmt.Sprint(a.other) == fmt.Sprint(b.other)
		}
		return false
	}
	return c == 0
}

// Compare orders two non-null holders of compatible kinds. It returns a
// negative number when a < b, zero when equal and a positive number when a > b.
func Compare(a, b Value) (int, error) {
	if a.null || b.null {
		return 0, fmt.Errorf("cannot compare null values")
	}

	if af, ok := a.AsFloat64(); ok {
		bf, ok := b.AsFloat64()
		if !ok {
			return 0, fmt.Errorf("cannot compare %s with %s", a.kind, b.kind)
		}
		if a.kind == KindInteger && b.kind == KindInteger {
			return cmpOrdered(a.num, b.num), nil
		}
		return cmpOrdered(af, bf), nil
	}

	if a.kind != b.kind {
		return 0, fmt.Errorf("cannot compare %s with %s", a.kind, b.kind)
	}

	switch a.kind {
	case KindString:
		return cmpOrdered(a.str, b.str), nil
	case KindBoolean:
		switch {
		case a.flag == b.flag:
			return 0, nil
		case !a.flag:
			return -1, nil
		default:
			return 1, nil
		}
	case KindDate:
		return a.date.Compare(b.date), nil
	default:
		return 0, fmt.Errorf("values of kind %s are not ordered", a.kind)
	}
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Built-in type codes.
const (
	CodeString  = "string"
	CodeInteger = "integer"
	CodeDecimal = "decimal"
	CodeBoolean = "boolean"
	CodeDate    = "date"
)

// DateLayout is the canonical textual form of date values.
const DateLayout = "2006-01-02"

// dateLayouts are tried in order when parsing dates.
var dateLayouts = []string{DateLayout, "02-01-2006", "02.01.2006", "02/01/2006", time.RFC3339}

// Type converts between textual and typed values. Implementations must be
// stateless and safe for concurrent use.
type Type interface {
	// Code returns the code this type is registered under.
	Code() string

	// Parse converts text into a typed holder. Empty text yields a null holder.
	Parse(text string) (Value, error)

	// Format renders a holder back to its canonical text. Null holders render
	// as the empty string.
	Format(v Value) (string, error)

	// Convert turns an arbitrary Go value supplied by the host (for example a
	// level value from a query context) into a holder.
	Convert(obj any) (Value, error)
}

// builtin implements the closed set of built-in types; behaviour is selected
// by kind.
type builtin struct {
	code string
	kind Kind
}

var (
	// String is the built-in text type.
	String Type = builtin{code: CodeString, kind: KindString}
	// Integer is the built-in int64 type.
	Integer Type = builtin{code: CodeInteger, kind: KindInteger}
	// Decimal is the built-in float64 type.
	Decimal Type = builtin{code: CodeDecimal, kind: KindDecimal}
	// Boolean is the built-in bool type.
	Boolean Type = builtin{code: CodeBoolean, kind: KindBoolean}
	// Date is the built-in calendar date type.
	Date Type = builtin{code: CodeDate, kind: KindDate}
)

func (b builtin) Code() string { return b.code }

func (b builtin) Parse(text string) (Value, error) {
	if b.kind != KindString {
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return NullValue(b.kind), nil
	}

	switch b.kind {
	case KindString:
		return StringValue(text), nil

	case KindInteger:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, &CoercionError{Type: b.code, Text: text, Cause: err}
		}
		return IntegerValue(i), nil

	case KindDecimal:
		f, err := strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64)
		if err != nil {
			return Value{}, &CoercionError{Type: b.code, Text: text, Cause: err}
		}
		return DecimalValue(f), nil

	case KindBoolean:
		switch strings.ToLower(text) {
		case "yes", "y":
			return BooleanValue(true), nil
		case "no", "n":
			return BooleanValue(false), nil
		}
		v, err := strconv.ParseBool(text)
		if err != nil {
			return Value{}, &CoercionError{Type: b.code, Text: text, Cause: err}
		}
		return BooleanValue(v), nil

	case KindDate:
		var lastErr error
		for _, layout := range dateLayouts {
			t, err := time.Parse(layout, text)
			if err == nil {
				return DateValue(t), nil
			}
			lastErr = err
		}
		return Value{}, &CoercionError{Type: b.code, Text: text, Cause: lastErr}

	default:
		return Value{}, &CoercionError{Type: b.code, Text: text, Cause: fmt.Errorf("unsupported kind %s", b.kind)}
	}
}

func (b builtin) Format(v Value) (string, error) {
	if v.null {
		return "", nil
	}
	if v.kind != b.kind {
		// integers are accepted by the decimal type and vice versa when lossless
		converted, err := b.Convert(v.Interface())
		if err != nil {
			return "", err
		}
		v = converted
	}
	return v.String(), nil
}

func (b builtin) Convert(obj any) (Value, error) {
	switch val := obj.(type) {
	case nil:
		return NullValue(b.kind), nil
	case Value:
		if val.kind == b.kind || val.null {
			return Value{kind: b.kind, null: val.null, str: val.str, num: val.num, dec: val.dec, flag: val.flag, date: val.date}, nil
		}
		if b.kind == KindString {
			return StringValue(val.String()), nil
		}
		return b.Parse(val.String())
	case string:
		return b.Parse(val)
	}

	switch b.kind {
	case KindString:
		if s, ok := obj.(fmt.Stringer); ok {
			return StringValue(s.String()), nil
		}
		return StringValue(fmt.Sprint(obj)), nil

	case KindInteger:
		switch val := obj.(type) {
		case int:
			return IntegerValue(int64(val)), nil
		case int8:
			return IntegerValue(int64(val)), nil
		case int16:
			return IntegerValue(int64(val)), nil
		case int32:
			return IntegerValue(int64(val)), nil
		case int64:
			return IntegerValue(val), nil
		case uint8:
			return IntegerValue(int64(val)), nil
		case uint16:
			return IntegerValue(int64(val)), nil
		case uint32:
			return IntegerValue(int64(val)), nil
		case uint:
			if uint64(val) <= math.MaxInt64 {
				return IntegerValue(int64(val)), nil
			}
		case uint64:
			if val <= math.MaxInt64 {
				return IntegerValue(int64(val)), nil
			}
		case float32:
			if n, ok := wholeNumber(float64(val)); ok {
				return IntegerValue(n), nil
			}
		case float64:
			if n, ok := wholeNumber(val); ok {
				return IntegerValue(n), nil
			}
		}

	case KindDecimal:
		switch val := obj.(type) {
		case float64:
			return DecimalValue(val), nil
		case float32:
			return DecimalValue(float64(val)), nil
		case int:
			return DecimalValue(float64(val)), nil
		case int32:
			return DecimalValue(float64(val)), nil
		case int64:
			return DecimalValue(float64(val)), nil
		}

	case KindBoolean:
		if val, ok := obj.(bool); ok {
			return BooleanValue(val), nil
		}

	case KindDate:
		if val, ok := obj.(time.Time); ok {
			return DateValue(val), nil
		}
	}

	return Value{}, &CoercionError{Type: b.code, Text: fmt.Sprint(obj), Cause: fmt.Errorf("cannot convert %T", obj)}
}

// wholeNumber reports whether f is integral and within the int64 range.
func wholeNumber(f float64) (int64, bool) {
	if f < math.MinInt64 || f >= math.MaxInt64 || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// Normalize converts obj with t and formats it back to canonical text.
// A nil Type leaves strings untouched and renders other values with fmt.
func Normalize(t Type, obj any) (string, error) {
	if t == nil {
		switch val := obj.(type) {
		case nil:
			return "", nil
		case string:
			return val, nil
		case Value:
			return val.String(), nil
		default:
			return fmt.Sprint(obj), nil
		}
	}

	v, err := t.Convert(obj)
	if err != nil {
		return "", err
	}
	return t.Format(v)
}

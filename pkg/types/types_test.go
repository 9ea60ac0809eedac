package types

import (
	"errors"
	"math"
	"testing"
	"time"
)

// TestParse_RoundTrip tests that parse(format(parse(text))) == parse(text) for all built-ins
func TestParse_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		text string
	}{
		{name: "string", typ: String, text: "hello world"},
		{name: "string with spaces", typ: String, text: "  padded "},
		{name: "integer", typ: Integer, text: "42"},
		{name: "negative integer", typ: Integer, text: "-7"},
		{name: "integer with leading zeros", typ: Integer, text: "007"},
		{name: "decimal", typ: Decimal, text: "3.14159"},
		{name: "decimal with comma", typ: Decimal, text: "1,5"},
		{name: "boolean true", typ: Boolean, text: "true"},
		{name: "boolean yes", typ: Boolean, text: "yes"},
		{name: "date iso", typ: Date, text: "2024-03-15"},
		{name: "date dotted", typ: Date, text: "15.03.2024"},
		{name: "empty is null", typ: Integer, text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := tt.typ.Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.text, err)
			}

			text, err := tt.typ.Format(first)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			second, err := tt.typ.Parse(text)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", text, err)
			}

			if !Equal(first, second) {
				t.Errorf("round trip mismatch: %v != %v", first, second)
			}
		})
	}
}

// TestParse_Malformed tests that malformed text fails with a CoercionError
func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		text string
	}{
		{name: "integer", typ: Integer, text: "abc"},
		{name: "integer overflow", typ: Integer, text: "99999999999999999999"},
		{name: "decimal", typ: Decimal, text: "1.2.3"},
		{name: "boolean", typ: Boolean, text: "maybe"},
		{name: "date", typ: Date, text: "2024-13-45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.typ.Parse(tt.text)
			var coercionErr *CoercionError
			if !errors.As(err, &coercionErr) {
				t.Fatalf("Parse(%q) error = %v, want *CoercionError", tt.text, err)
			}
			if coercionErr.Type != tt.typ.Code() {
				t.Errorf("CoercionError.Type = %q, want %q", coercionErr.Type, tt.typ.Code())
			}
		})
	}
}

// TestNormalize tests conversion of host values into canonical text
func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		obj     any
		want    string
		wantErr bool
	}{
		{name: "int to integer", typ: Integer, obj: 12, want: "12"},
		{name: "padded string to integer", typ: Integer, obj: "0012", want: "12"},
		{name: "float to decimal", typ: Decimal, obj: 2.50, want: "2.5"},
		{name: "int to decimal", typ: Decimal, obj: int64(3), want: "3"},
		{name: "bool", typ: Boolean, obj: true, want: "true"},
		{name: "time to date", typ: Date, obj: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC), want: "2024-01-02"},
		{name: "holder", typ: Integer, obj: IntegerValue(5), want: "5"},
		{name: "nil", typ: Integer, obj: nil, want: ""},
		{name: "untyped string", typ: nil, obj: "ABC", want: "ABC"},
		{name: "untyped int", typ: nil, obj: 10, want: "10"},
		{name: "uint to integer", typ: Integer, obj: uint(5), want: "5"},
		{name: "uint64 to integer", typ: Integer, obj: uint64(math.MaxInt64), want: "9223372036854775807"},
		{name: "float32 to integer", typ: Integer, obj: float32(7), want: "7"},
		{name: "uint64 overflow", typ: Integer, obj: uint64(math.MaxInt64) + 1, wantErr: true},
		{name: "float beyond int64", typ: Integer, obj: 1e19, wantErr: true},
		{name: "fraction to integer", typ: Integer, obj: 1.5, wantErr: true},
		{name: "bad string to integer", typ: Integer, obj: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.typ, tt.obj)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestCompare tests ordering across kinds
func TestCompare(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Value
		want    int
		wantErr bool
	}{
		{name: "integers", a: IntegerValue(1), b: IntegerValue(2), want: -1},
		{name: "integer vs decimal", a: IntegerValue(2), b: DecimalValue(1.5), want: 1},
		{name: "strings", a: StringValue("b"), b: StringValue("b"), want: 0},
		{name: "dates", a: DateValue(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), b: DateValue(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)), want: 1},
		{name: "booleans", a: BooleanValue(false), b: BooleanValue(true), want: -1},
		{name: "mismatched kinds", a: StringValue("1"), b: IntegerValue(1), wantErr: true},
		{name: "null", a: NullValue(KindString), b: StringValue("x"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Compare() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	for _, code := range []string{CodeString, CodeInteger, CodeDecimal, CodeBoolean, CodeDate} {
		if _, err := reg.Resolve(code); err != nil {
			t.Errorf("Resolve(%q) error = %v", code, err)
		}
	}

	if _, err := reg.Resolve("money"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resolve(money) error = %v, want ErrNotFound", err)
	}

	if err := reg.Register("money", Decimal); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register("money", Decimal); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	typ, err := reg.Resolve("money")
	if err != nil {
		t.Fatalf("Resolve(money) error = %v", err)
	}
	if typ.Code() != CodeDecimal {
		t.Errorf("Resolve(money).Code() = %q, want %q", typ.Code(), CodeDecimal)
	}
}

package mcsv

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValueEqual(t *testing.T) {
	d1 := decimal.RequireFromString("1.10")
	d2 := decimal.RequireFromString("1.1")
	noon := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{name: "equal integers", a: IntValue(42), b: IntValue(42), want: true},
		{name: "different integers", a: IntValue(42), b: IntValue(43), want: false},
		{name: "decimal trailing zero", a: DecimalValue(d1), b: DecimalValue(d2), want: true},
		{name: "kind mismatch", a: IntValue(1), b: FloatValue(1), want: false},
		{name: "nulls of same kind", a: NullValue(DataDate), b: NullValue(DataDate), want: true},
		{name: "null versus value", a: NullValue(DataText), b: TextValue(""), want: false},
		{name: "equal instants", a: DatetimeValue(noon), b: DatetimeValue(noon.In(time.FixedZone("x", 3600))), want: true},
		{name: "booleans", a: BoolValue(true), b: BoolValue(false), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{name: "null", v: NullValue(DataInteger), want: "<null>"},
		{name: "text", v: TextValue("abc"), want: "abc"},
		{name: "integer", v: IntValue(-7), want: "-7"},
		{name: "boolean", v: BoolValue(true), want: "true"},
		{name: "decimal", v: DecimalValue(decimal.RequireFromString("10.50")), want: "10.5"},
		{name: "date", v: DateValue(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), want: "2024-03-01"},
		{name: "time", v: TimeValue(time.Date(0, 1, 1, 9, 30, 0, 0, time.UTC)), want: "09:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

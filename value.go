package mcsv

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DataType identifies the semantic type of a decoded value.
type DataType int

const (
	DataAny DataType = iota
	DataText
	DataBoolean
	DataInteger
	DataFloat
	DataDecimal
	DataDate
	DataDatetime
	DataTime
)

// String returns the lowercase name of the data type.
func (d DataType) String() string {
	switch d {
	case DataAny:
		return "any"
	case DataText:
		return "text"
	case DataBoolean:
		return "boolean"
	case DataInteger:
		return "integer"
	case DataFloat:
		return "float"
	case DataDecimal:
		return "decimal"
	case DataDate:
		return "date"
	case DataDatetime:
		return "datetime"
	case DataTime:
		return "time"
	default:
		return fmt.Sprintf("DataType(%d)", int(d))
	}
}

// Value is a typed cell value: a tagged union over the supported data types.
// A Value with Valid=false is the null value of its kind (produced when a
// cell matches the description's null marker, or by the null error policy).
//
// Only the field matching Kind is meaningful; the zero Value is a null of
// kind DataAny.
type Value struct {
	Kind    DataType
	Valid   bool
	Text    string
	Bool    bool
	Int     int64
	Float   float64
	Decimal decimal.Decimal
	Time    time.Time // date, datetime and time kinds
}

// NullValue returns the null value of the given kind.
func NullValue(kind DataType) Value {
	return Value{Kind: kind}
}

// TextValue returns a valid text value.
func TextValue(s string) Value {
	return Value{Kind: DataText, Valid: true, Text: s}
}

// AnyValue returns an untyped passthrough value holding the raw text.
func AnyValue(s string) Value {
	return Value{Kind: DataAny, Valid: true, Text: s}
}

// BoolValue returns a valid boolean value.
func BoolValue(b bool) Value {
	return Value{Kind: DataBoolean, Valid: true, Bool: b}
}

// IntValue returns a valid integer value.
func IntValue(i int64) Value {
	return Value{Kind: DataInteger, Valid: true, Int: i}
}

// FloatValue returns a valid float value.
func FloatValue(f float64) Value {
	return Value{Kind: DataFloat, Valid: true, Float: f}
}

// DecimalValue returns a valid arbitrary-precision decimal value.
func DecimalValue(d decimal.Decimal) Value {
	return Value{Kind: DataDecimal, Valid: true, Decimal: d}
}

// DateValue returns a valid date value. The time component is ignored.
func DateValue(t time.Time) Value {
	return Value{Kind: DataDate, Valid: true, Time: t}
}

// DatetimeValue returns a valid datetime value.
func DatetimeValue(t time.Time) Value {
	return Value{Kind: DataDatetime, Valid: true, Time: t}
}

// TimeValue returns a valid time-of-day value. The date component is ignored.
func TimeValue(t time.Time) Value {
	return Value{Kind: DataTime, Valid: true, Time: t}
}

// IsNull reports whether v is a null value.
func (v Value) IsNull() bool { return !v.Valid }

// Equal reports type-specific equality: integers compare numerically,
// decimals by value (1.10 equals 1.1), times by instant. Nulls of the same
// kind are equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	if !v.Valid || !o.Valid {
		return v.Valid == o.Valid
	}
	switch v.Kind {
	case DataText, DataAny:
		return v.Text == o.Text
	case DataBoolean:
		return v.Bool == o.Bool
	case DataInteger:
		return v.Int == o.Int
	case DataFloat:
		return v.Float == o.Float
	case DataDecimal:
		return v.Decimal.Equal(o.Decimal)
	case DataDate, DataDatetime, DataTime:
		return v.Time.Equal(o.Time)
	default:
		return false
	}
}

// String returns a plain, dialect-independent rendering of the value.
// Formatting under a column's declared format is the processor's job; this
// is for logs and diagnostics.
func (v Value) String() string {
	if !v.Valid {
		return "<null>"
	}
	switch v.Kind {
	case DataText, DataAny:
		return v.Text
	case DataBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case DataInteger:
		return fmt.Sprintf("%d", v.Int)
	case DataFloat:
		return fmt.Sprintf("%g", v.Float)
	case DataDecimal:
		return v.Decimal.String()
	case DataDate:
		return v.Time.Format("2006-01-02")
	case DataDatetime:
		return v.Time.Format("2006-01-02T15:04:05")
	case DataTime:
		return v.Time.Format("15:04:05")
	default:
		return ""
	}
}

// Row is one decoded data record in list mode: one Value per column, in
// column order.
type Row []Value

package store

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/metacsv/go-mcsv"
)

// pgvalue.go maps decoded values onto pgtype wire types. Null values map to
// the corresponding pgtype with Valid=false, so the database sees SQL NULL
// rather than a zero value.

// ColumnType returns the Postgres column type used for a data type.
func ColumnType(t mcsv.DataType) string {
	switch t {
	case mcsv.DataBoolean:
		return "boolean"
	case mcsv.DataInteger:
		return "bigint"
	case mcsv.DataFloat:
		return "double precision"
	case mcsv.DataDecimal:
		return "numeric"
	case mcsv.DataDate:
		return "date"
	case mcsv.DataDatetime:
		return "timestamp"
	case mcsv.DataTime:
		return "time"
	default:
		return "text"
	}
}

// PgValue converts one decoded value to the pgtype value sent over the wire.
func PgValue(v mcsv.Value) (any, error) {
	switch v.Kind {
	case mcsv.DataText, mcsv.DataAny:
		return pgtype.Text{String: v.Text, Valid: v.Valid}, nil
	case mcsv.DataBoolean:
		return pgtype.Bool{Bool: v.Bool, Valid: v.Valid}, nil
	case mcsv.DataInteger:
		return pgtype.Int8{Int64: v.Int, Valid: v.Valid}, nil
	case mcsv.DataFloat:
		return pgtype.Float8{Float64: v.Float, Valid: v.Valid}, nil
	case mcsv.DataDecimal:
		if !v.Valid {
			return pgtype.Numeric{}, nil
		}
		return pgtype.Numeric{Int: v.Decimal.Coefficient(), Exp: v.Decimal.Exponent(), Valid: true}, nil
	case mcsv.DataDate:
		return pgtype.Date{Time: v.Time, Valid: v.Valid}, nil
	case mcsv.DataDatetime:
		return pgtype.Timestamp{Time: v.Time, Valid: v.Valid}, nil
	case mcsv.DataTime:
		if !v.Valid {
			return pgtype.Time{}, nil
		}
		return pgtype.Time{Microseconds: microsSinceMidnight(v.Time), Valid: true}, nil
	default:
		return nil, fmt.Errorf("store: no postgres mapping for %s", v.Kind)
	}
}

// PgRow converts a decoded row for CopyFrom.
func PgRow(row mcsv.Row) ([]any, error) {
	out := make([]any, len(row))
	for i, v := range row {
		pv, err := PgValue(v)
		if err != nil {
			return nil, err
		}
		out[i] = pv
	}
	return out, nil
}

func microsSinceMidnight(t time.Time) int64 {
	h, m, s := t.Clock()
	return (int64(h)*3600+int64(m)*60+int64(s))*1e6 + int64(t.Nanosecond())/1e3
}

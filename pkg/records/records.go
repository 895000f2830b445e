// Package records defines the record shape shared by dataset sources and the
// validation engine: a flat map from column name to value.
package records

import (
	"fmt"
	"strconv"
)

// Record is one tabular row with named-column access. Values are whatever the
// source produced: string, int64, float64, bool, time.Time, or nil for SQL
// NULL / absent CSV fields.
type Record map[string]any

// Has reports whether the column exists on the record, regardless of value.
func (r Record) Has(col string) bool {
	_, ok := r[col]
	return ok
}

// IsNull reports whether the column is absent, nil, or an empty string.
// Empty strings count as null so CSV sources behave like SQL sources.
func (r Record) IsNull(col string) bool {
	v, ok := r[col]
	if !ok || v == nil {
		return true
	}
	s, isStr := v.(string)
	return isStr && s == ""
}

// String returns the column value as a string. ok is false when the value is
// null or not a string.
func (r Record) String(col string) (s string, ok bool) {
	v := r[col]
	if v == nil {
		return "", false
	}
	s, ok = v.(string)
	return s, ok
}

// Float returns the column value as a float64, coercing the numeric types a
// source may produce (ints, floats, numeric strings). ok is false for null
// and non-numeric values.
func (r Record) Float(col string) (f float64, ok bool) {
	switch v := r[col].(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Text renders the column value for diagnostics and key building. Null values
// render as "<null>".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return "<null>"
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

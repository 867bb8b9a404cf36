// Package chart holds the data model shared by every stage of the combo
// chart engine: input records, the series descriptor union, layout and the
// interaction contract.
package chart

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Record is one row of input data. It has no identity beyond its position
// in the data slice.
type Record map[string]any

// Value returns the raw field value, or nil when the record or field is
// absent.
func (r Record) Value(key string) any {
	if r == nil {
		return nil
	}
	return r[key]
}

// Number coerces v the way the domain stage expects: anything that is not a
// finite number becomes 0.
func Number(v any) float64 {
	f, ok := NumberOK(v)
	if !ok {
		return 0
	}
	return f
}

// NumberOK reports whether v holds a finite numeric value. Times are
// converted to Unix milliseconds. Empty strings, nil and NaN are rejected.
func NumberOK(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, isFinite(t)
	case float32:
		return float64(t), isFinite(float64(t))
	case time.Time:
		return float64(t.UnixMilli()), !t.IsZero()
	case *time.Time:
		if t == nil {
			return 0, false
		}
		return float64(t.UnixMilli()), !t.IsZero()
	case json.Number:
		f, err := t.Float64()
		return f, err == nil && isFinite(f)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := cast.ToFloat64E(s)
		return f, err == nil && isFinite(f)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, isFinite(f)
}

// Time reports whether v is a time or a string parseable as a date.
func Time(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		if s == "" || looksNumeric(s) {
			return time.Time{}, false
		}
		parsed, err := cast.ToTimeE(s)
		if err != nil || parsed.IsZero() {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

// Label renders a categorical value as the string used for band lookups.
func Label(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	}
	return cast.ToString(v)
}

// IsNumeric reports whether v is a native numeric type (strings excluded).
func IsNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return true
	}
	return false
}

func looksNumeric(s string) bool {
	_, err := cast.ToFloat64E(s)
	return err == nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

package club

import (
	"math"
	"strconv"
	"strings"
)

// NextID returns the identifier for a new row given the raw values of the id
// column. Missing, non-numeric, zero and negative values are ignored; when no
// usable value remains the result is 1. It is not a sequence: two callers that
// read the same column get the same answer, so it must run inside the write
// that uses it.
func NextID(values []any) int64 {
	var max int64
	for _, v := range values {
		if n, ok := coerceID(v); ok && n > max {
			max = n
		}
	}
	return max + 1
}

// NextIDFromInts is NextID for an already typed column.
func NextIDFromInts(ids []int64) int64 {
	var max int64
	for _, n := range ids {
		if n > max {
			max = n
		}
	}
	return max + 1
}

func coerceID(v any) (int64, bool) {
	var n int64
	switch x := v.(type) {
	case nil:
		return 0, false
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		n = int64(x)
	case float32:
		return coerceFloat(float64(x))
	case float64:
		return coerceFloat(x)
	case *int64:
		if x == nil {
			return 0, false
		}
		n = *x
	case []byte:
		return coerceString(string(x))
	case string:
		return coerceString(x)
	default:
		return 0, false
	}
	return n, n > 0
}

func coerceFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 1 || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func coerceString(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, n > 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return coerceFloat(f)
}

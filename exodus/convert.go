package exodus

import (
	"fmt"
	"math"
)

// Number is any value the numeric conversions accept.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Float64s widens values to float64. Integers are exact up to 2^53.
func Float64s[T Number](values []T) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// Int32s narrows values to int32. Fractions are truncated toward zero; NaN
// and values outside the int32 range are range errors.
func Int32s[T Number](values []T) ([]int32, error) {
	out := make([]int32, len(values))
	for i, v := range values {
		f := float64(v)
		if math.IsNaN(f) {
			return nil, fmt.Errorf("value %d is NaN: %w", i, ErrRange)
		}
		t := math.Trunc(f)
		if t < math.MinInt32 || t > math.MaxInt32 {
			return nil, fmt.Errorf("value %d (%v) overflows int32: %w", i, v, ErrRange)
		}
		out[i] = int32(t)
	}
	return out, nil
}

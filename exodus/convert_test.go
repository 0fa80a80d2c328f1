package exodus

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat64s(t *testing.T) {
	assert.Equal(t, []float64{0, 1.5, -2}, Float64s([]float32{0, 1.5, -2}))
	assert.Equal(t, []float64{1 << 53}, Float64s([]int64{1 << 53}))
	assert.Equal(t, []float64{7}, Float64s([]uint8{7}))
	assert.Empty(t, Float64s([]int{}))
}

func TestInt32s(t *testing.T) {
	got, err := Int32s([]float64{1.9, -1.9, 0})
	require.NoError(t, err)
	assert.Equal(t, []int32{1, -1, 0}, got)

	got, err = Int32s([]int64{math.MaxInt32, math.MinInt32})
	require.NoError(t, err)
	assert.Equal(t, []int32{math.MaxInt32, math.MinInt32}, got)

	_, err = Int32s([]int64{math.MaxInt32 + 1})
	assert.ErrorIs(t, err, ErrRange)
	_, err = Int32s([]float64{math.NaN()})
	assert.ErrorIs(t, err, ErrRange)
	_, err = Int32s([]float32{float32(math.Inf(-1))})
	assert.ErrorIs(t, err, ErrRange)
}

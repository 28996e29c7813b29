package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownsample_NoDownsampling(t *testing.T) {
	now := time.Now()
	samples := []Sample{
		{Timestamp: now, Lux: 1.0},
		{Timestamp: now.Add(100 * time.Millisecond), Lux: 1.1},
		{Timestamp: now.Add(200 * time.Millisecond), Lux: 1.2},
	}

	// Test with nil dst
	result := Downsample(nil, samples, 10)
	require.Equal(t, samples, result)

	// Test with sufficient capacity dst
	dst := make([]Sample, 0, 10)
	result = Downsample(dst, samples, 10)
	require.Equal(t, samples, result)
	// Should reuse dst
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsample_WithDownsampling(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}

	dst := make([]float64, 0, 20)
	result := Downsample(dst, values, 10)
	require.Len(t, result, 10)
	assert.Equal(t, cap(dst), cap(result))

	for i, v := range result {
		assert.Equal(t, float64(i*10), v)
	}
}

func TestDownsample_AllocatesWhenDstTooSmall(t *testing.T) {
	values := make([]int, 50)
	for i := range values {
		values[i] = i
	}

	dst := make([]int, 0, 2)
	result := Downsample(dst, values, 5)
	require.Len(t, result, 5)
	assert.GreaterOrEqual(t, cap(result), 5)
	assert.Equal(t, []int{0, 10, 20, 30, 40}, result)

	result = Downsample(dst, values[:3], 5)
	assert.Equal(t, []int{0, 1, 2}, result)
}

func TestDownsample_Empty(t *testing.T) {
	assert.Empty(t, Downsample[float64](nil, nil, 10))
	assert.Empty(t, Downsample(nil, []float64{1, 2}, 0))
}

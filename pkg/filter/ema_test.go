package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA_FirstSampleUnchanged(t *testing.T) {
	f, err := NewEMA(0.1)
	require.NoError(t, err)

	assert.Equal(t, 123.456, f.Process(123.456))
	assert.InDelta(t, 0.9*123.456+0.1*23.456, f.Process(23.456), 1e-12)
}

func TestEMA_ConstantInputStaysExact(t *testing.T) {
	for _, v := range []float64{50, 0.1, 1e-7, 12345.6789, -3.3} {
		f, err := NewEMA(0.1)
		require.NoError(t, err)
		for i := range 100 {
			require.Equal(t, v, f.Process(v), "value %g step %d", v, i)
		}
	}
}

func TestEMA_Recurrence(t *testing.T) {
	const alpha = 0.25
	f, err := NewEMA(alpha)
	require.NoError(t, err)

	inputs := []float64{10, 20, 0, 40, 40}
	state := inputs[0]
	assert.Equal(t, state, f.Process(inputs[0]))
	for _, in := range inputs[1:] {
		state = alpha*in + (1-alpha)*state
		assert.InDelta(t, state, f.Process(in), 1e-12)
	}
}

func TestEMA_AlphaOneIsPassThrough(t *testing.T) {
	f, err := NewEMA(1)
	require.NoError(t, err)
	for _, v := range []float64{1, 5, -2} {
		assert.Equal(t, v, f.Process(v))
	}
}

func TestEMA_Reset(t *testing.T) {
	f, err := NewEMA(0.5)
	require.NoError(t, err)
	f.Process(10)
	f.Process(20)
	f.Reset()
	assert.Equal(t, 7.0, f.Process(7))
	assert.Equal(t, 0.5, f.Alpha())
}

func TestNewEMA_Invalid(t *testing.T) {
	for _, a := range []float64{0, -0.1, 1.01, math.NaN()} {
		_, err := NewEMA(a)
		assert.ErrorIs(t, err, ErrInvalidConfig, "alpha %g", a)
	}
}

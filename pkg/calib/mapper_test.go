package calib

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name                 string
		v, inMin, inMax      float64
		outMin, outMax, want float64
	}{
		{"midpoint", 5, 0, 10, 0, 255, 127.5},
		{"below range", -5, 0, 10, 0, 255, 0},
		{"above range", 15, 0, 10, 0, 255, 255},
		{"lower edge", 0, 0, 10, 0, 255, 0},
		{"upper edge", 10, 0, 10, 0, 255, 255},
		{"offset ranges", 150, 100, 200, 10, 20, 15},
		{"degenerate range", 123, 5, 5, 0, 255, 0},
		{"inverted range", 7, 10, 5, 0, 255, 0},
		{"degenerate with offset output", 7, 5, 5, 40, 255, 40},
		{"positive infinity clamps", math.Inf(1), 0, 10, 0, 255, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Map(tt.v, tt.inMin, tt.inMax, tt.outMin, tt.outMax), 1e-12)
		})
	}
}

func TestMap_DegenerateForAnyValue(t *testing.T) {
	for _, v := range []float64{-1e9, 0, 5, 1e9} {
		assert.Equal(t, 0.0, Map(v, 5, 5, 0, 255))
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{0.49, 0},
		{0.5, 1},
		{2.5, 3},
		{127.5, 128},
		{254.4, 254},
		{254.5, 255},
		{255, 255},
		{300, 255},
		{-0.4, 0},
		{-0.5, 0},
		{-20, 0},
		{math.NaN(), 0},
		{math.Inf(1), 255},
		{math.Inf(-1), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Command(tt.in, 0, 255), "input %g", tt.in)
	}
}

func TestCommand_CustomRange(t *testing.T) {
	assert.Equal(t, 10, Command(3, 10, 20))
	assert.Equal(t, 20, Command(99, 10, 20))
	assert.Equal(t, 15, Command(14.5, 10, 20))
}

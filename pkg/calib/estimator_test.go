package calib

import (
	"math"
	"math/rand"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"single", []float64{4}, 4},
		{"odd", []float64{1, 2, 9}, 2},
		{"even", []float64{1, 2, 4, 9}, 3},
		{"duplicates", []float64{5, 5, 5, 5}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.in))
		})
	}

	assert.True(t, math.IsNaN(Median(nil)))
}

func TestEstimator_Empty(t *testing.T) {
	e := NewEstimator(8)
	current := Bounds{Min: 3, Max: 42}

	assert.Equal(t, current, e.Estimate(nil, current))
	assert.Equal(t, current, e.Estimate([]float64{}, current))
}

func TestEstimator_Cases(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want Bounds
	}{
		{"single sample", []float64{7}, Bounds{7, 7}},
		{"identical samples", []float64{50, 50, 50, 50}, Bounds{50, 50}},
		{"gross outlier on plateau", []float64{10, 10, 10, 10, 1000}, Bounds{10, 10}},
		{"outlier order does not matter", []float64{1000, 10, 10, 10, 10}, Bounds{10, 10}},
		{"no outliers", []float64{1, 2, 3, 4, 5}, Bounds{1, 5}},
		{"high outlier", []float64{1, 2, 3, 4, 5, 100}, Bounds{1, 5}},
		{"low outlier", []float64{-100, 10, 11, 12, 13, 14}, Bounds{10, 14}},
		{"both sides", []float64{-500, 100, 101, 102, 103, 104, 105, 9000}, Bounds{100, 105}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEstimator(len(tt.in))
			got := e.Estimate(tt.in, Bounds{0, 1000})
			assert.InDelta(t, tt.want.Min, got.Min, 1e-12)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-12)
		})
	}
}

func TestEstimator_DoesNotModifyInput(t *testing.T) {
	in := []float64{5, 1, 4, 2, 3}
	orig := append([]float64(nil), in...)

	NewEstimator(len(in)).Estimate(in, Bounds{})
	assert.Equal(t, orig, in)
}

func TestEstimator_GrowsBeyondCapacity(t *testing.T) {
	e := NewEstimator(2)
	got := e.Estimate([]float64{1, 2, 3, 4, 5, 6, 7}, Bounds{})
	assert.Equal(t, Bounds{1, 7}, got)
}

// Compare against an independent median/MAD implementation on noisy data
// with injected outliers.
func TestEstimator_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	e := NewEstimator(600)

	for round := range 20 {
		data := make([]float64, 100+round*25)
		for i := range data {
			data[i] = 300 + rng.NormFloat64()*10
			if rng.Float64() < 0.03 {
				data[i] += 5000
			}
		}

		median, err := stats.Median(data)
		require.NoError(t, err)
		mad, err := stats.MedianAbsoluteDeviationPopulation(data)
		require.NoError(t, err)
		threshold := InlierSigmas * (MADScale * mad)

		want := Bounds{Min: math.Inf(1), Max: math.Inf(-1)}
		for _, v := range data {
			if math.Abs(v-median) <= threshold {
				want.Min = min(want.Min, v)
				want.Max = max(want.Max, v)
			}
		}

		got := e.Estimate(data, Bounds{})
		assert.InDelta(t, want.Min, got.Min, 1e-9, "round %d", round)
		assert.InDelta(t, want.Max, got.Max, 1e-9, "round %d", round)
		assert.Less(t, got.Max, 1000.0, "outliers must be rejected (round %d)", round)
	}
}

func TestEstimator_NoAllocationsWithinCapacity(t *testing.T) {
	data := make([]float64, 600)
	for i := range data {
		data[i] = float64(i % 37)
	}
	e := NewEstimator(len(data))

	allocs := testing.AllocsPerRun(10, func() {
		e.Estimate(data, Bounds{})
	})
	assert.Zero(t, allocs)
}

func TestBounds_Span(t *testing.T) {
	assert.Equal(t, 25.0, Bounds{Min: 5, Max: 30}.Span())
}

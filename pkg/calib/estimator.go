// Package calib derives the adaptive input range of the output mapping from
// the recent filtered signal and maps filtered values onto the actuator range.
package calib

import (
	"math"
	"slices"
)

const (
	// MADScale converts a median absolute deviation to a normal-consistent sigma.
	MADScale = 1.4826
	// InlierSigmas is the rejection threshold in sigmas around the median.
	InlierSigmas = 3.0
	// SigmaFloor is the smallest sigma used for the inlier threshold, so
	// windows of identical values keep every sample.
	SigmaFloor = 1e-9
)

// Bounds is the input range of the output mapping.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max - Min.
func (b Bounds) Span() float64 {
	return b.Max - b.Min
}

// Estimator computes outlier-robust bounds of a window of samples.
//
// Scratch storage is allocated once so estimates over windows no larger than
// the construction capacity do not allocate.
type Estimator struct {
	sorted []float64
	dev    []float64
}

// NewEstimator creates an estimator sized for windows of up to capacity samples.
func NewEstimator(capacity int) *Estimator {
	capacity = max(capacity, 0)
	return &Estimator{
		sorted: make([]float64, 0, capacity),
		dev:    make([]float64, 0, capacity),
	}
}

// Estimate returns the min and max of the samples lying within InlierSigmas
// robust sigmas of their median. An empty input returns current unchanged.
func (e *Estimator) Estimate(samples []float64, current Bounds) Bounds {
	if len(samples) == 0 {
		return current
	}

	e.sorted = append(e.sorted[:0], samples...)
	slices.Sort(e.sorted)
	median := Median(e.sorted)

	e.dev = e.dev[:0]
	for _, v := range e.sorted {
		e.dev = append(e.dev, math.Abs(v-median))
	}
	slices.Sort(e.dev)
	sigma := MADScale * Median(e.dev)

	// A zero MAD means at least half the window sits on the median. Those
	// samples are the inliers; anything else is an outlier of that plateau.
	threshold := InlierSigmas * max(sigma, SigmaFloor)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range e.sorted {
		if math.Abs(v-median) > threshold {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo > hi {
		return Bounds{Min: median, Max: median}
	}
	return Bounds{Min: lo, Max: hi}
}

// Median returns the median of an ascending slice. Even lengths average the
// two central values. An empty slice yields NaN.
func Median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

package calib

import "math"

// Map linearly maps value from [inMin, inMax] onto [outMin, outMax], clamping
// to the output range. A degenerate input range maps everything to outMin.
func Map(value, inMin, inMax, outMin, outMax float64) float64 {
	if inMax <= inMin {
		return outMin
	}
	t := (value - inMin) / (inMax - inMin)
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	return outMin + t*(outMax-outMin)
}

// Command rounds mapped half away from zero and clamps it to [lo, hi].
// NaN maps to lo.
func Command(mapped float64, lo, hi int) int {
	if math.IsNaN(mapped) {
		return lo
	}
	r := math.Round(mapped)
	if r < float64(lo) {
		return lo
	}
	if r > float64(hi) {
		return hi
	}
	return int(r)
}

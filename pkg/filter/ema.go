package filter

import (
	"fmt"
	"math"
)

// EMA is an exponential moving average. The first sample initializes the state
// and is returned unchanged.
type EMA struct {
	alpha       float64
	state       float64
	initialized bool
}

// NewEMA creates an exponential moving average with smoothing factor alpha in (0, 1].
func NewEMA(alpha float64) (*EMA, error) {
	if math.IsNaN(alpha) || alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("%w: ema alpha must be in (0, 1], got %g", ErrInvalidConfig, alpha)
	}
	return &EMA{alpha: alpha}, nil
}

// Process blends raw into the running state.
func (f *EMA) Process(raw float64) float64 {
	if !f.initialized {
		f.state = raw
		f.initialized = true
		return f.state
	}
	// alpha*raw + (1-alpha)*state, arranged so a constant input is a fixed point
	f.state += f.alpha * (raw - f.state)
	return f.state
}

// Reset forgets the state; the next sample re-initializes it.
func (f *EMA) Reset() {
	f.state = 0
	f.initialized = false
}

// Alpha returns the smoothing factor.
func (f *EMA) Alpha() float64 {
	return f.alpha
}

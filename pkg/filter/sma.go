package filter

import "fmt"

// SMA is a true simple moving average over the last Window raw samples.
// Before the window fills it returns the mean of the samples seen so far.
type SMA struct {
	window int
	hist   history
}

// NewSMA creates a moving average over window samples.
func NewSMA(window int) (*SMA, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: sma window must be >= 1, got %d", ErrInvalidConfig, window)
	}
	return &SMA{
		window: window,
		hist:   newHistory(window),
	}, nil
}

// Process adds raw to the window and returns the current average.
func (f *SMA) Process(raw float64) float64 {
	f.hist.push(raw)
	return f.hist.mean()
}

// Reset empties the window.
func (f *SMA) Reset() {
	f.hist.reset()
}

// Window returns the averaging window length.
func (f *SMA) Window() int {
	return f.window
}

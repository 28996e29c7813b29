// Package pipeline runs one conditioning step per sensor reading: smoothing,
// adaptive range calibration and mapping onto the actuator range.
//
// A Pipeline is owned by a single goroutine. It never blocks and allocates
// all of its buffers at construction.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/itohio/golux/pkg/calib"
	"github.com/itohio/golux/pkg/config"
	"github.com/itohio/golux/pkg/filter"
	"github.com/itohio/golux/pkg/ringbuf"
)

// ErrInvalidConfig is returned by New when the configuration cannot be run.
var ErrInvalidConfig = errors.New("invalid pipeline configuration")

// Output is the result of a single tick.
type Output struct {
	Raw        float64
	Filtered   float64
	Min        float64
	Max        float64
	Mapped     float64
	Command    int
	Calibrated bool // bounds were re-estimated on this tick
}

// Pipeline conditions a lux signal into an actuator command.
type Pipeline struct {
	filter    filter.Filter
	window    *ringbuf.RingBuffer[float64]
	scratch   []float64
	estimator *calib.Estimator
	tracker   *calib.Tracker

	initial     calib.Bounds
	stride      int
	requireFull bool
	outMin      int
	outMax      int

	ticks uint64
}

// New builds a pipeline from cfg.
func New(cfg *config.Config) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	f, err := filter.New(cfg.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cal := cfg.Calibration
	policy, err := calib.ParseSpanPolicy(cal.SpanPolicy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	initial := calib.Bounds{Min: cal.InitialMin, Max: cal.InitialMax}
	return &Pipeline{
		filter:    f,
		window:    ringbuf.New[float64](cal.WindowSize),
		scratch:   make([]float64, cal.WindowSize),
		estimator: calib.NewEstimator(cal.WindowSize),
		tracker: calib.NewTracker(calib.TrackerConfig{
			Initial: initial,
			Alpha:   cal.BoundsAlpha,
			Epsilon: cal.Epsilon,
			Span:    cal.MinSpan,
			Policy:  policy,
		}),
		initial:     initial,
		stride:      cal.Stride,
		requireFull: cal.RequireFullWindow,
		outMin:      cfg.Output.Min,
		outMax:      cfg.Output.Max,
	}, nil
}

// Tick processes one raw reading.
func (p *Pipeline) Tick(raw float64) Output {
	filtered := p.filter.Process(raw)
	p.window.Add(filtered)

	tick := p.ticks
	p.ticks++

	calibrated := p.calibrate(tick)

	b := p.tracker.Bounds()
	mapped := calib.Map(filtered, b.Min, b.Max, float64(p.outMin), float64(p.outMax))

	return Output{
		Raw:        raw,
		Filtered:   filtered,
		Min:        b.Min,
		Max:        b.Max,
		Mapped:     mapped,
		Command:    calib.Command(mapped, p.outMin, p.outMax),
		Calibrated: calibrated,
	}
}

func (p *Pipeline) calibrate(tick uint64) bool {
	if tick%uint64(p.stride) != 0 {
		return false
	}
	if p.requireFull && !p.window.Full() {
		return false
	}

	n := p.window.CopyChronological(p.scratch)
	if n == 0 {
		return false
	}
	est := p.estimator.Estimate(p.scratch[:n], p.tracker.Bounds())
	p.tracker.Blend(est)
	return true
}

// Reset returns the filter, calibration window and bounds to their initial state.
func (p *Pipeline) Reset() {
	p.filter.Reset()
	p.window.Reset()
	p.tracker.Reset(p.initial)
	p.ticks = 0
}

// Bounds returns the current mapping bounds.
func (p *Pipeline) Bounds() calib.Bounds {
	return p.tracker.Bounds()
}

// Ticks returns the number of ticks since construction or the last Reset.
func (p *Pipeline) Ticks() uint64 {
	return p.ticks
}

// Window returns a chronological copy of the calibration window.
func (p *Pipeline) Window() []float64 {
	out := make([]float64, p.window.Available())
	p.window.CopyChronological(out)
	return out
}

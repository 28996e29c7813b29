package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/itohio/golux/pkg/calib"
	"github.com/itohio/golux/pkg/config"
	"github.com/itohio/golux/pkg/pipeline"
	"github.com/itohio/golux/pkg/sample"
	"github.com/itohio/golux/pkg/telemetry"
)

// ErrOverrideRange is returned by SetOverride for brightness outside 0..100 %.
var ErrOverrideRange = errors.New("override brightness out of range")

// Actuator receives the LED duty of every tick.
type Actuator interface {
	SetDuty(duty int) error
}

// Controller drives a Pipeline from a sample stream and forwards its command
// to the actuator.
//
// Records are kept in a FIFO ordered oldest first and trimmed by timestamp to
// the configured history window.
type Controller struct {
	p   *pipeline.Pipeline
	act Actuator
	log *slog.Logger

	outMin, outMax int
	history        time.Duration

	mu       sync.RWMutex
	records  []telemetry.Record
	override int // manual duty, -1 when automatic
	shutdown bool

	callbacks []func(records []telemetry.Record)
	cbMu      sync.RWMutex
}

// New creates a controller. act may be nil for monitoring without an LED.
func New(cfg *config.Config, p *pipeline.Pipeline, act Actuator, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		p:        p,
		act:      act,
		log:      log,
		outMin:   cfg.Output.Min,
		outMax:   cfg.Output.Max,
		history:  cfg.Sampling.History,
		override: -1,
	}
}

// Run ticks the pipeline for every sample until in closes or ctx is done.
// Afterwards no callbacks are sent until ResetShutdown is called.
func (c *Controller) Run(ctx context.Context, in <-chan sample.Sample) error {
	defer func() {
		c.mu.Lock()
		c.shutdown = true
		c.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-in:
			if !ok {
				return nil
			}
			c.process(s)
		}
	}
}

func (c *Controller) process(s sample.Sample) {
	if math.IsNaN(s.Lux) || math.IsInf(s.Lux, 0) {
		c.log.Warn("dropping non-finite reading", "lux", s.Lux, "timestamp", s.Timestamp)
		return
	}

	c.mu.Lock()
	out := c.p.Tick(s.Lux)

	rec := telemetry.Record{
		Timestamp: s.Timestamp,
		Raw:       out.Raw,
		Filtered:  out.Filtered,
		Min:       out.Min,
		Max:       out.Max,
		Mapped:    out.Mapped,
		Command:   out.Command,
		Mode:      telemetry.ModeAuto,
	}
	if c.override >= 0 {
		rec.Command = c.override
		rec.Mode = telemetry.ModeManual
	}

	c.records = append(c.records, rec)
	c.trim(s.Timestamp)

	shouldNotify := !c.shutdown
	c.mu.Unlock()

	c.apply(rec.Command)

	if shouldNotify {
		c.notifyCallbacks()
	}
}

// trim removes records outside the history window ending at now.
func (c *Controller) trim(now time.Time) {
	if c.history <= 0 {
		return
	}
	cutoff := now.Add(-c.history)
	idx := 0
	for idx < len(c.records) && !c.records[idx].Timestamp.After(cutoff) {
		idx++
	}
	if idx > 0 {
		c.records = append(c.records[:0], c.records[idx:]...)
	}
}

func (c *Controller) apply(duty int) {
	if c.act == nil {
		return
	}
	if err := c.act.SetDuty(duty); err != nil {
		c.log.Warn("failed to set LED duty", "duty", duty, "error", err)
	}
}

// SetOverride switches to manual mode with the LED at percent brightness.
func (c *Controller) SetOverride(percent float64) error {
	if math.IsNaN(percent) || percent < 0 || percent > 100 {
		return fmt.Errorf("%w: %g", ErrOverrideRange, percent)
	}

	mapped := calib.Map(percent, 0, 100, float64(c.outMin), float64(c.outMax))
	duty := calib.Command(mapped, c.outMin, c.outMax)

	c.mu.Lock()
	c.override = duty
	c.mu.Unlock()

	c.log.Info("manual LED override", "brightness", percent, "duty", duty)
	c.apply(duty)
	return nil
}

// ClearOverride returns to automatic control. The next tick applies the
// pipeline command.
func (c *Controller) ClearOverride() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.override >= 0 {
		c.log.Info("automatic LED control")
	}
	c.override = -1
}

// HandleCommand applies an LED command received over MQTT or HTTP.
func (c *Controller) HandleCommand(cmd telemetry.Command) {
	if cmd.Mode != telemetry.ModeManual {
		c.ClearOverride()
		return
	}
	if cmd.Brightness == nil {
		c.log.Warn("manual LED command without brightness")
		return
	}
	if err := c.SetOverride(*cmd.Brightness); err != nil {
		c.log.Warn("rejected LED command", "error", err)
	}
}

// Mode returns the current control mode.
func (c *Controller) Mode() telemetry.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.override >= 0 {
		return telemetry.ModeManual
	}
	return telemetry.ModeAuto
}

// Records returns a copy of the record history.
func (c *Controller) Records() []telemetry.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]telemetry.Record, len(c.records))
	copy(result, c.records)
	return result
}

// Latest returns the newest record.
func (c *Controller) Latest() (telemetry.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.records) == 0 {
		return telemetry.Record{}, false
	}
	return c.records[len(c.records)-1], true
}

// Bounds returns the current calibration bounds.
func (c *Controller) Bounds() calib.Bounds {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.p.Bounds()
}

// Reset clears the history and restarts calibration from the configured bounds.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.p.Reset()
	c.records = c.records[:0]
}

// OnUpdate registers a callback invoked after every tick with the current
// history. The callback should copy data quickly and return as fast as possible.
func (c *Controller) OnUpdate(callback func(records []telemetry.Record)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.callbacks = append(c.callbacks, callback)
}

// ResetShutdown resets the shutdown flag, allowing callbacks to be sent again.
// This should be called before starting a new measurement chain.
func (c *Controller) ResetShutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = false
}

// notifyCallbacks invokes all registered callbacks with a copy of the history.
func (c *Controller) notifyCallbacks() {
	records := c.Records()

	c.cbMu.RLock()
	callbacks := make([]func(records []telemetry.Record), len(c.callbacks))
	copy(callbacks, c.callbacks)
	c.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(records)
		}
	}
}

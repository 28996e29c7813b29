package calib

import (
	"fmt"
	"strings"
)

// SpanPolicy decides how collapsed bounds are reopened.
type SpanPolicy int

const (
	// SpanAnchorMin keeps Min and sets Max = Min + Span.
	SpanAnchorMin SpanPolicy = iota
	// SpanCentered re-centers a Span wide range on the bounds midpoint.
	SpanCentered
)

func (p SpanPolicy) String() string {
	switch p {
	case SpanAnchorMin:
		return "anchor_min"
	case SpanCentered:
		return "centered"
	default:
		return fmt.Sprintf("SpanPolicy(%d)", int(p))
	}
}

// ParseSpanPolicy parses the configuration name of a span policy.
func ParseSpanPolicy(s string) (SpanPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "anchor_min", "anchor-min":
		return SpanAnchorMin, nil
	case "centered", "centred":
		return SpanCentered, nil
	}
	return SpanAnchorMin, fmt.Errorf("unknown span policy %q", s)
}

// TrackerConfig parametrizes a Tracker.
type TrackerConfig struct {
	Initial Bounds
	Alpha   float64 // weight of a new estimate
	Epsilon float64 // smallest span accepted after a blend
	Span    float64 // span forced when bounds collapse
	Policy  SpanPolicy
}

// DefaultTrackerConfig returns the tracker parameters of the sensor firmware.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Initial: Bounds{Min: 0, Max: 1000},
		Alpha:   0.05,
		Epsilon: 1e-3,
		Span:    1.0,
		Policy:  SpanAnchorMin,
	}
}

// Tracker smooths successive range estimates into the active mapping bounds.
type Tracker struct {
	cfg    TrackerConfig
	bounds Bounds
}

// NewTracker creates a tracker starting at cfg.Initial.
func NewTracker(cfg TrackerConfig) *Tracker {
	return &Tracker{cfg: cfg, bounds: cfg.Initial}
}

// Blend moves the bounds a fraction Alpha towards est and returns them.
// The returned bounds always satisfy Max > Min + Epsilon.
func (t *Tracker) Blend(est Bounds) Bounds {
	a := t.cfg.Alpha
	t.bounds.Min = (1-a)*t.bounds.Min + a*est.Min
	t.bounds.Max = (1-a)*t.bounds.Max + a*est.Max

	if t.bounds.Max <= t.bounds.Min+t.cfg.Epsilon {
		switch t.cfg.Policy {
		case SpanCentered:
			mid := (t.bounds.Min + t.bounds.Max) / 2
			t.bounds.Min = mid - t.cfg.Span/2
			t.bounds.Max = mid + t.cfg.Span/2
		default:
			t.bounds.Max = t.bounds.Min + t.cfg.Span
		}
	}
	return t.bounds
}

// Bounds returns the current bounds.
func (t *Tracker) Bounds() Bounds {
	return t.bounds
}

// Reset sets the bounds to b.
func (t *Tracker) Reset(b Bounds) {
	t.bounds = b
}

// Config returns the tracker parameters.
func (t *Tracker) Config() TrackerConfig {
	return t.cfg
}

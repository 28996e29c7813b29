// Package lux talks to ambient light sensor nodes: the serial firmware, ESP32
// nodes streaming over UDP and a simulated daylight source.
package lux

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaudRate is the firmware console baud rate.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
	// MaxDuty is the largest accepted PWM duty.
	MaxDuty = 255
)

var (
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrDutyRange        = errors.New("duty out of range")
)

// RawSample is one report of a sensor node: the node uptime and one lux
// value per attached sensor.
type RawSample struct {
	Timestamp time.Time // host receive time
	Millis    uint32    // node uptime in milliseconds
	Lux       []float64
}

// CombineMode selects how the readings of several sensors are merged.
type CombineMode string

const (
	CombineMean  CombineMode = "mean"
	CombineFirst CombineMode = "first"
	CombineMax   CombineMode = "max"
)

// ParseCombineMode parses a configuration value. Empty selects CombineMean.
func ParseCombineMode(s string) (CombineMode, error) {
	switch m := CombineMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return CombineMean, nil
	case CombineMean, CombineFirst, CombineMax:
		return m, nil
	}
	return "", fmt.Errorf("unknown combine mode %q", s)
}

// Combine merges the sensor readings into a single lux value.
// It returns NaN when the sample carries no readings.
func (s RawSample) Combine(mode CombineMode) float64 {
	if len(s.Lux) == 0 {
		return math.NaN()
	}
	switch mode {
	case CombineFirst:
		return s.Lux[0]
	case CombineMax:
		m := s.Lux[0]
		for _, v := range s.Lux[1:] {
			m = max(m, v)
		}
		return m
	default:
		var sum float64
		for _, v := range s.Lux {
			sum += v
		}
		return sum / float64(len(s.Lux))
	}
}

// parseLine parses a line reported by a sensor node.
// Format: millis,lux1[,lux2...]
// Example: 123456,301.25,298.70
func parseLine(line string) (RawSample, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) < 2 {
		return RawSample{}, fmt.Errorf("invalid line format: expected millis and at least one lux value, got %d fields", len(parts))
	}

	millis, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid millis: %w", err)
	}

	values := make([]float64, 0, len(parts)-1)
	for i, p := range parts[1:] {
		v, err := parseLux(p)
		if err != nil {
			return RawSample{}, fmt.Errorf("sensor %d: %w", i+1, err)
		}
		values = append(values, v)
	}

	return RawSample{
		Timestamp: time.Now(),
		Millis:    uint32(millis),
		Lux:       values,
	}, nil
}

// parseKeyValue parses the single-sensor packets of older nodes.
// Format: key:lux
// Example: va1:0.300
func parseKeyValue(line string) (string, RawSample, error) {
	key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
	if !ok || key == "" {
		return "", RawSample{}, fmt.Errorf("invalid key:value packet %q", line)
	}
	v, err := parseLux(val)
	if err != nil {
		return "", RawSample{}, fmt.Errorf("key %s: %w", key, err)
	}
	return key, RawSample{Timestamp: time.Now(), Lux: []float64{v}}, nil
}

func parseLux(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid lux: %w", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid lux: %v", v)
	}
	if v < 0 {
		return 0, fmt.Errorf("lux out of range: %g", v)
	}
	return v, nil
}

// dutyCommand formats the PWM command understood by the firmware.
func dutyCommand(duty int) ([]byte, error) {
	if duty < 0 || duty > MaxDuty {
		return nil, fmt.Errorf("%w: %d (0..%d)", ErrDutyRange, duty, MaxDuty)
	}
	return fmt.Appendf(nil, "%03d\n", duty), nil
}

// Package telemetry publishes per-tick pipeline records to MQTT, CSV files
// and websocket clients.
package telemetry

import (
	"errors"
	"time"
)

// Mode is the LED control mode.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
)

// Record is the telemetry of one pipeline tick.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Raw       float64   `json:"raw"`
	Filtered  float64   `json:"filtered"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	Mapped    float64   `json:"mapped"`
	Command   int       `json:"command"` // duty sent to the LED
	Mode      Mode      `json:"mode"`
}

// Sink consumes telemetry records.
type Sink interface {
	Publish(r Record) error
	Close() error
}

// Multi fans records out to several sinks.
type Multi []Sink

// Publish sends r to every sink and joins their errors.
func (m Multi) Publish(r Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

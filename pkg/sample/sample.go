// Package sample turns raw sensor node reports into the fixed-rate lux stream
// that drives the conditioning pipeline.
package sample

import (
	"log/slog"
	"math"
	"time"

	"github.com/itohio/golux/pkg/lux"
)

// Sample is a single lux reading.
type Sample struct {
	Timestamp time.Time
	Lux       float64
}

// Converter is a function type that converts RawSample channel to Sample channel.
type Converter func(in <-chan lux.RawSample) <-chan Sample

// NewConverter creates a converter that merges the readings of every raw
// sample using mode. Samples without readings are dropped.
func NewConverter(mode lux.CombineMode, bufSize int, log *slog.Logger) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}
	if log == nil {
		log = slog.Default()
	}

	return func(in <-chan lux.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				v := raw.Combine(mode)
				if math.IsNaN(v) {
					log.Warn("dropping sample without readings", "millis", raw.Millis)
					continue
				}

				select {
				case out <- Sample{Timestamp: raw.Timestamp, Lux: v}:
				case <-time.After(time.Second):
					log.Warn("converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// Package filter implements the smoothing filters applied to raw lux readings.
//
// Every filter consumes exactly one raw sample per Process call and returns one
// smoothed sample. Filters keep their own state and are not safe for concurrent use.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/itohio/golux/pkg/config"
)

// ErrInvalidConfig is returned when a filter is constructed with unusable parameters.
var ErrInvalidConfig = errors.New("invalid filter configuration")

// Filter turns one raw sample into one smoothed sample.
type Filter interface {
	Process(raw float64) float64
	Reset()
}

var (
	_ Filter = (*SMA)(nil)
	_ Filter = (*EMA)(nil)
	_ Filter = (*SavitzkyGolay)(nil)
)

// Kind selects a filter variant.
type Kind string

const (
	KindSMA Kind = "sma"
	KindEMA Kind = "ema"
	KindSG  Kind = "sg"
)

// Kinds lists the supported variants in display order.
func Kinds() []Kind {
	return []Kind{KindSMA, KindEMA, KindSG}
}

// ParseKind converts a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sma", "moving_average", "moving-average":
		return KindSMA, nil
	case "ema", "exponential":
		return KindEMA, nil
	case "sg", "savgol", "savitzky-golay", "savitzky_golay":
		return KindSG, nil
	}
	return "", fmt.Errorf("%w: unknown filter kind %q", ErrInvalidConfig, s)
}

// String returns a human readable name.
func (k Kind) String() string {
	switch k {
	case KindSMA:
		return "Simple moving average"
	case KindEMA:
		return "Exponential moving average"
	case KindSG:
		return "Savitzky-Golay"
	}
	return string(k)
}

// New builds the filter selected by cfg.
func New(cfg config.FilterConfig) (Filter, error) {
	kind, err := ParseKind(cfg.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindSMA:
		return NewSMA(cfg.Window)
	case KindEMA:
		return NewEMA(cfg.Alpha)
	default:
		return NewSavitzkyGolay(cfg.Window, cfg.PolyOrder)
	}
}

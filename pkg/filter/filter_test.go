package filter

import (
	"testing"

	"github.com/itohio/golux/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"sma", KindSMA, false},
		{"EMA", KindEMA, false},
		{" sg ", KindSG, false},
		{"savitzky-golay", KindSG, false},
		{"savgol", KindSG, false},
		{"kalman", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.FilterConfig
		want    Filter
		wantErr bool
	}{
		{"sma", config.FilterConfig{Kind: "sma", Window: 5}, &SMA{}, false},
		{"ema", config.FilterConfig{Kind: "ema", Alpha: 0.2}, &EMA{}, false},
		{"sg", config.FilterConfig{Kind: "sg", Window: 11, PolyOrder: 3}, &SavitzkyGolay{}, false},
		{"sma zero window", config.FilterConfig{Kind: "sma", Window: 0}, nil, true},
		{"ema zero alpha", config.FilterConfig{Kind: "ema", Alpha: 0}, nil, true},
		{"sg even window", config.FilterConfig{Kind: "sg", Window: 10, PolyOrder: 3}, nil, true},
		{"sg order too high", config.FilterConfig{Kind: "sg", Window: 5, PolyOrder: 5}, nil, true},
		{"unknown", config.FilterConfig{Kind: "median"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Nil(t, f)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}
}

func TestDefaultConfigBuildsFilter(t *testing.T) {
	f, err := New(config.Default().Filter)
	require.NoError(t, err)
	assert.IsType(t, &EMA{}, f)
}

// Every variant converges to a constant input once its window is full.
func TestFilters_ConstantInput(t *testing.T) {
	const v = 50.0

	sma, err := NewSMA(11)
	require.NoError(t, err)
	ema, err := NewEMA(0.1)
	require.NoError(t, err)
	sg, err := NewSavitzkyGolay(11, 3)
	require.NoError(t, err)

	for name, f := range map[string]Filter{"sma": sma, "ema": ema, "sg": sg} {
		t.Run(name, func(t *testing.T) {
			var out float64
			for range 20 {
				out = f.Process(v)
			}
			assert.InDelta(t, v, out, 1e-9)
		})
	}
}

package calib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_ConvergesMonotonically(t *testing.T) {
	const ulp = 1e-9 // rounding slack at the fixed point
	tr := NewTracker(DefaultTrackerConfig())
	target := Bounds{Min: 20, Max: 30}

	prev := tr.Bounds()
	require.Equal(t, Bounds{Min: 0, Max: 1000}, prev)

	for i := range 500 {
		b := tr.Blend(target)
		require.GreaterOrEqual(t, b.Min, prev.Min-ulp, "min must not decrease (step %d)", i)
		require.LessOrEqual(t, b.Max, prev.Max+ulp, "max must not increase (step %d)", i)
		require.LessOrEqual(t, b.Min, target.Min+ulp, "min overshoot (step %d)", i)
		require.GreaterOrEqual(t, b.Max, target.Max-ulp, "max overshoot (step %d)", i)
		require.Greater(t, b.Max, b.Min+tr.Config().Epsilon)
		prev = b
	}

	assert.InDelta(t, 20, prev.Min, 1e-6)
	assert.InDelta(t, 30, prev.Max, 1e-6)
}

func TestTracker_FirstBlend(t *testing.T) {
	tr := NewTracker(DefaultTrackerConfig())
	b := tr.Blend(Bounds{Min: 20, Max: 30})

	assert.InDelta(t, 1.0, b.Min, 1e-12)
	assert.InDelta(t, 951.5, b.Max, 1e-12)
	assert.Equal(t, b, tr.Bounds())
}

func TestTracker_CollapsedSpan(t *testing.T) {
	tests := []struct {
		name   string
		policy SpanPolicy
		est    Bounds
		want   Bounds
	}{
		{"anchor min zero width", SpanAnchorMin, Bounds{10, 10}, Bounds{10, 11}},
		{"anchor min inverted", SpanAnchorMin, Bounds{10, 9}, Bounds{10, 11}},
		{"anchor min within epsilon", SpanAnchorMin, Bounds{10, 10.0005}, Bounds{10, 11}},
		{"centered zero width", SpanCentered, Bounds{10, 10}, Bounds{9.5, 10.5}},
		{"centered inverted", SpanCentered, Bounds{12, 8}, Bounds{9.5, 10.5}},
		{"wide enough is kept", SpanAnchorMin, Bounds{10, 10.5}, Bounds{10, 10.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(TrackerConfig{
				Initial: Bounds{0, 1000},
				Alpha:   1,
				Epsilon: 1e-3,
				Span:    1,
				Policy:  tt.policy,
			})
			got := tr.Blend(tt.est)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-12)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-12)
		})
	}
}

func TestTracker_AlphaZeroHoldsBounds(t *testing.T) {
	cfg := DefaultTrackerConfig()
	cfg.Alpha = 0
	tr := NewTracker(cfg)

	for range 10 {
		tr.Blend(Bounds{Min: 500, Max: 501})
	}
	assert.Equal(t, cfg.Initial, tr.Bounds())
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(DefaultTrackerConfig())
	tr.Blend(Bounds{Min: 100, Max: 200})
	tr.Reset(Bounds{Min: 5, Max: 6})
	assert.Equal(t, Bounds{Min: 5, Max: 6}, tr.Bounds())
}

func TestParseSpanPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    SpanPolicy
		wantErr bool
	}{
		{"", SpanAnchorMin, false},
		{"anchor_min", SpanAnchorMin, false},
		{"Centered", SpanCentered, false},
		{"sideways", SpanAnchorMin, true},
	}

	for _, tt := range tests {
		got, err := ParseSpanPolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, must(ParseSpanPolicy(got.String())))
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

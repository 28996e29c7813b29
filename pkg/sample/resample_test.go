package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResampler_AveragesPerPeriod(t *testing.T) {
	const period = 500 * time.Millisecond
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	at := func(ms int) time.Time { return base.Add(time.Duration(ms) * time.Millisecond) }

	in := make(chan Sample, 10)
	in <- Sample{Timestamp: at(0), Lux: 10}
	in <- Sample{Timestamp: at(100), Lux: 20}
	in <- Sample{Timestamp: at(499), Lux: 30}
	in <- Sample{Timestamp: at(500), Lux: 100} // next slot
	in <- Sample{Timestamp: at(1700), Lux: 7}  // skips an empty slot
	in <- Sample{Timestamp: at(1800), Lux: 9}
	close(in)

	got := collect(t, NewResampler(period, 0)(in))
	require.Len(t, got, 3)

	assert.Equal(t, 20.0, got[0].Lux)
	assert.Equal(t, at(499), got[0].Timestamp)
	assert.Equal(t, 100.0, got[1].Lux)
	assert.Equal(t, at(500), got[1].Timestamp)
	assert.Equal(t, 8.0, got[2].Lux)
	assert.Equal(t, at(1800), got[2].Timestamp)
}

func TestResampler_LateSampleJoinsCurrentSlot(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	in := make(chan Sample, 3)
	in <- Sample{Timestamp: base.Add(1100 * time.Millisecond), Lux: 4}
	in <- Sample{Timestamp: base.Add(200 * time.Millisecond), Lux: 8}
	close(in)

	got := collect(t, NewResampler(time.Second, 0)(in))
	require.Len(t, got, 1)
	assert.Equal(t, 6.0, got[0].Lux)
	assert.Equal(t, base.Add(1100*time.Millisecond), got[0].Timestamp)
}

func TestResampler_ZeroPeriodPassesThrough(t *testing.T) {
	now := time.Now()
	in := make(chan Sample, 3)
	want := []Sample{
		{Timestamp: now, Lux: 1},
		{Timestamp: now, Lux: 2},
		{Timestamp: now.Add(time.Millisecond), Lux: 3},
	}
	for _, s := range want {
		in <- s
	}
	close(in)

	assert.Equal(t, want, collect(t, NewResampler(0, 0)(in)))
}

func TestResampler_EmptyInput(t *testing.T) {
	in := make(chan Sample)
	close(in)
	assert.Empty(t, collect(t, NewResampler(time.Second, 0)(in)))
}

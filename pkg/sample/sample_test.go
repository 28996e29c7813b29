package sample

import (
	"testing"
	"time"

	"github.com/itohio/golux/pkg/lux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, out <-chan Sample) []Sample {
	t.Helper()
	var got []Sample
	timeout := time.After(2 * time.Second)
	for {
		select {
		case s, ok := <-out:
			if !ok {
				return got
			}
			got = append(got, s)
		case <-timeout:
			t.Fatal("output channel did not close")
			return nil
		}
	}
}

func TestConverter_Combines(t *testing.T) {
	now := time.Now()
	tests := []struct {
		mode lux.CombineMode
		want []float64
	}{
		{lux.CombineMean, []float64{200, 10}},
		{lux.CombineFirst, []float64{100, 10}},
		{lux.CombineMax, []float64{300, 10}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			in := make(chan lux.RawSample, 3)
			in <- lux.RawSample{Timestamp: now, Lux: []float64{100, 300}}
			in <- lux.RawSample{Timestamp: now.Add(time.Second)} // no readings
			in <- lux.RawSample{Timestamp: now.Add(2 * time.Second), Lux: []float64{10}}
			close(in)

			got := collect(t, NewConverter(tt.mode, 10, nil)(in))
			require.Len(t, got, 2)
			assert.Equal(t, tt.want[0], got[0].Lux)
			assert.Equal(t, tt.want[1], got[1].Lux)
			assert.Equal(t, now, got[0].Timestamp)
			assert.Equal(t, now.Add(2*time.Second), got[1].Timestamp)
		})
	}
}

// TestConverter_GracefulShutdown tests that converter closes output channel
// when input channel is closed.
func TestConverter_GracefulShutdown(t *testing.T) {
	in := make(chan lux.RawSample)
	out := NewConverter(lux.CombineMean, 0, nil)(in)

	done := make(chan int)
	go func() {
		n := 0
		for range out {
			n++
		}
		done <- n
	}()

	for i := range 3 {
		in <- lux.RawSample{Lux: []float64{float64(i)}}
	}
	close(in)

	select {
	case n := <-done:
		assert.Equal(t, 3, n)
	case <-time.After(time.Second):
		t.Fatal("converter did not close output")
	}
}

package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/itohio/golux/pkg/sample"
	"github.com/itohio/golux/pkg/telemetry"
	"github.com/stretchr/testify/assert"
)

// TestController_GracefulShutdown_NoCallbacksAfterClose tests that the
// controller stops sending callbacks after the input channel is closed.
func TestController_GracefulShutdown_NoCallbacksAfterClose(t *testing.T) {
	c, _ := newController(t, nil)

	var mu sync.Mutex
	callbackCount := 0
	c.OnUpdate(func([]telemetry.Record) {
		mu.Lock()
		callbackCount++
		mu.Unlock()
	})

	now := time.Now()
	feed(t, c,
		sample.Sample{Timestamp: now, Lux: 10},
		sample.Sample{Timestamp: now.Add(time.Second), Lux: 20},
		sample.Sample{Timestamp: now.Add(2 * time.Second), Lux: 30},
	)

	mu.Lock()
	initialCount := callbackCount
	mu.Unlock()
	assert.Equal(t, 3, initialCount)

	// A new chain without ResetShutdown still ticks but stays silent.
	feed(t, c, sample.Sample{Timestamp: now.Add(3 * time.Second), Lux: 40})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, initialCount, callbackCount, "No callbacks should be sent after channel closes")
	assert.Len(t, c.Records(), 4)
}

// TestController_ResetShutdown tests that ResetShutdown allows callbacks again.
func TestController_ResetShutdown(t *testing.T) {
	c, _ := newController(t, nil)

	var mu sync.Mutex
	callbackCount := 0
	c.OnUpdate(func([]telemetry.Record) {
		mu.Lock()
		callbackCount++
		mu.Unlock()
	})

	input1 := make(chan sample.Sample, 10)
	done1 := make(chan struct{})
	go func() {
		defer close(done1)
		c.Run(context.Background(), input1)
	}()

	now := time.Now()
	input1 <- sample.Sample{Timestamp: now, Lux: 1}
	input1 <- sample.Sample{Timestamp: now.Add(100 * time.Millisecond), Lux: 2}
	close(input1)
	select {
	case <-done1:
	case <-time.After(2 * time.Second):
		t.Fatal("First Run did not finish within timeout")
	}

	mu.Lock()
	count1 := callbackCount
	mu.Unlock()

	c.ResetShutdown()

	input2 := make(chan sample.Sample, 10)
	done2 := make(chan struct{})
	go func() {
		defer close(done2)
		c.Run(context.Background(), input2)
	}()

	input2 <- sample.Sample{Timestamp: now.Add(time.Second), Lux: 3}
	close(input2)
	select {
	case <-done2:
	case <-time.After(2 * time.Second):
		t.Fatal("Second Run did not finish within timeout")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, count1)
	assert.Greater(t, callbackCount, count1, "Callbacks should resume after ResetShutdown")
}

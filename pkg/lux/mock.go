package lux

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/itohio/golux/pkg/config"
)

// Mock simulates a sensor node observing slowly varying daylight with sensor
// noise and occasional gross outliers (reflections, direct sun, bus glitches).
type Mock struct {
	cfg *config.MockConfig

	samples   chan RawSample
	done      chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	connected bool
	duty      int

	rng       *rand.Rand
	startTime time.Time
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}
	return &Mock{
		cfg:     cfg,
		samples: make(chan RawSample, DefaultBufferSize),
		done:    make(chan struct{}),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Connect starts generating samples.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}

	m.connected = true
	m.startTime = time.Now()

	m.wg.Add(1)
	go m.generateSamples()

	return nil
}

// Close stops the mocked device and closes the samples channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.connected = false
	close(m.done)
	m.mu.Unlock()

	m.wg.Wait()
	close(m.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// SetDuty records the simulated LED duty.
func (m *Mock) SetDuty(duty int) error {
	if _, err := dutyCommand(duty); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return ErrNotConnected
	}
	m.duty = duty
	return nil
}

// Duty returns the last duty set.
func (m *Mock) Duty() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.duty
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

func (m *Mock) generateSamples() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			sample := m.generateSample(now)
			select {
			case m.samples <- sample:
			case <-m.done:
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateSample generates the readings of all simulated sensors at now.
func (m *Mock) generateSample(now time.Time) RawSample {
	elapsed := now.Sub(m.startTime)

	base := m.cfg.BaseLux
	if m.cfg.Period > 0 {
		phase := 2 * math.Pi * elapsed.Seconds() / m.cfg.Period.Seconds()
		base += m.cfg.Amplitude * math.Sin(phase)
	}

	sensors := max(m.cfg.Sensors, 1)
	values := make([]float64, sensors)
	for i := range values {
		v := base + m.rng.NormFloat64()*m.cfg.NoiseLevel
		if m.cfg.OutlierRate > 0 && m.rng.Float64() < m.cfg.OutlierRate {
			v += m.cfg.OutlierLux
		}
		values[i] = max(v, 0)
	}

	return RawSample{
		Timestamp: now,
		Millis:    uint32(elapsed.Milliseconds()),
		Lux:       values,
	}
}

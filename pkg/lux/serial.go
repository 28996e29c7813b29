package lux

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.bug.st/serial"
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// openPort opens the serial line. Tests replace it with an in-memory pipe.
var openPort = func(name string, baudRate int) (io.ReadWriteCloser, error) {
	return serial.Open(name, &serial.Mode{BaudRate: baudRate})
}

// Serial represents a connection to the sensor firmware over a serial line.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	log      *slog.Logger

	conn      io.ReadWriteCloser
	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	duty      int // last duty sent, -1 before the first command
}

// New creates a new Serial device with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int, log *slog.Logger) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		log:      log.With("port", port),
		samples:  make(chan RawSample, bufSize),
		ctx:      ctx,
		cancel:   cancel,
		duty:     -1,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	conn, err := openPort(d.port, d.baudRate)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = conn
	d.connected = true
	d.duty = -1

	go d.readSamples(conn)

	return nil
}

// Close closes the connection and the samples channel.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			d.log.Warn("closing serial port", "error", err)
		}
		d.conn = nil
	}

	d.connected = false
	close(d.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	return d.samples
}

// SetDuty sends a PWM duty command to the firmware.
func (d *Serial) SetDuty(duty int) error {
	cmd, err := dutyCommand(duty)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return ErrNotConnected
	}
	if duty == d.duty {
		return nil
	}

	if _, err := d.conn.Write(cmd); err != nil {
		return fmt.Errorf("failed to send duty command: %w", err)
	}
	d.duty = duty

	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readSamples reads lines from the serial port and parses them into RawSample.
func (d *Serial) readSamples(conn io.Reader) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("panic in serial reader", "panic", r)
		}
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		sample, err := parseLine(line)
		if err != nil {
			// firmware banners and debug output share the console
			d.log.Debug("skipping line", "line", line, "error", err)
			continue
		}

		if !d.send(sample) {
			return
		}
	}

	if err := scanner.Err(); err != nil && d.ctx.Err() == nil {
		d.log.Error("reading serial port", "error", err)
	}
}

// send forwards a sample without blocking. It reports false once the device is closed.
func (d *Serial) send(sample RawSample) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return false
	}
	select {
	case d.samples <- sample:
	default:
		d.log.Warn("samples channel full, dropping sample")
	}
	return true
}

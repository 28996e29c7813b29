package lux

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
)

const maxDatagram = 1024

// UDP receives reports from network sensor nodes. Each datagram carries one
// or more lines, either "millis,lux1,lux2" or the older "key:lux" form.
//
// Nodes have no command channel, so SetDuty only records the duty.
type UDP struct {
	addr    string
	bufSize int
	log     *slog.Logger

	conn      *net.UDPConn
	samples   chan RawSample
	mu        sync.RWMutex
	connected bool
	duty      int
	wg        sync.WaitGroup
}

// NewUDP creates a UDP listener for addr, e.g. ":8888".
func NewUDP(addr string, bufSize int, log *slog.Logger) *UDP {
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &UDP{
		addr:    addr,
		bufSize: bufSize,
		log:     log.With("udp", addr),
		samples: make(chan RawSample, bufSize),
	}
}

// Connect binds the UDP socket and starts receiving.
func (u *UDP) Connect() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.connected {
		return ErrAlreadyConnected
	}

	laddr, err := net.ResolveUDPAddr("udp", u.addr)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", u.addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", u.addr, err)
	}

	u.conn = conn
	u.connected = true

	u.wg.Add(1)
	go u.receive(conn)

	return nil
}

// Addr returns the bound local address, or nil when not connected.
func (u *UDP) Addr() net.Addr {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.conn == nil {
		return nil
	}
	return u.conn.LocalAddr()
}

// Close stops receiving and closes the samples channel.
func (u *UDP) Close() error {
	u.mu.Lock()
	if !u.connected {
		u.mu.Unlock()
		return nil
	}
	u.connected = false
	err := u.conn.Close()
	u.conn = nil
	u.mu.Unlock()

	u.wg.Wait()
	close(u.samples)

	if err != nil {
		return fmt.Errorf("failed to close udp socket: %w", err)
	}
	return nil
}

// Samples returns the channel for reading samples.
func (u *UDP) Samples() <-chan RawSample {
	return u.samples
}

// SetDuty records the duty.
func (u *UDP) SetDuty(duty int) error {
	if _, err := dutyCommand(duty); err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.connected {
		return ErrNotConnected
	}
	u.duty = duty
	return nil
}

// Duty returns the last recorded duty.
func (u *UDP) Duty() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.duty
}

// IsConnected returns whether the socket is bound.
func (u *UDP) IsConnected() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.connected
}

func (u *UDP) receive(conn *net.UDPConn) {
	defer u.wg.Done()

	buf := make([]byte, maxDatagram)
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				u.log.Error("reading udp socket", "error", err)
			}
			return
		}

		for line := range strings.Lines(string(buf[:n])) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			sample, err := parsePacket(line)
			if err != nil {
				u.log.Warn("bad packet", "from", from, "packet", line, "error", err)
				continue
			}
			select {
			case u.samples <- sample:
			default:
				u.log.Warn("samples channel full, dropping sample")
			}
		}
	}
}

func parsePacket(line string) (RawSample, error) {
	if strings.Contains(line, ",") {
		return parseLine(line)
	}
	_, sample, err := parseKeyValue(line)
	return sample, err
}

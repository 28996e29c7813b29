package lux

import (
	"bufio"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipePort replaces the serial opener with an in-memory connection and
// returns the firmware side of it.
func pipePort(t *testing.T) net.Conn {
	t.Helper()
	host, node := net.Pipe()
	orig := openPort
	openPort = func(string, int) (io.ReadWriteCloser, error) { return host, nil }
	t.Cleanup(func() {
		openPort = orig
		node.Close()
	})
	return node
}

func TestNew(t *testing.T) {
	dev := New("COM3", 115200, 100, nil)
	assert.NotNil(t, dev)
	assert.Equal(t, "COM3", dev.port)
	assert.Equal(t, 115200, dev.baudRate)
	assert.Equal(t, 100, dev.bufSize)
	assert.NotNil(t, dev.samples)
	assert.False(t, dev.IsConnected())
}

func TestNew_Defaults(t *testing.T) {
	dev := New("COM3", 0, 0, nil)
	assert.Equal(t, DefaultBaudRate, dev.baudRate)
	assert.Equal(t, DefaultBufferSize, dev.bufSize)
}

func TestSerial_ConnectError(t *testing.T) {
	orig := openPort
	t.Cleanup(func() { openPort = orig })
	errBusy := errors.New("port busy")
	openPort = func(string, int) (io.ReadWriteCloser, error) { return nil, errBusy }

	dev := New("/dev/ttyUSB9", 0, 0, nil)
	assert.ErrorIs(t, dev.Connect(), errBusy)
	assert.False(t, dev.IsConnected())
}

func TestSerial_ReadsSamples(t *testing.T) {
	node := pipePort(t)
	dev := New("/dev/ttyUSB0", 0, 10, nil)
	require.NoError(t, dev.Connect())
	defer dev.Close()

	assert.ErrorIs(t, dev.Connect(), ErrAlreadyConnected)

	go func() {
		io.WriteString(node, "VEML7700 ready\r\n")
		io.WriteString(node, "1000,300.5,299.5\r\n")
		io.WriteString(node, "\r\n")
		io.WriteString(node, "1500,301,303\n")
	}()

	var got []RawSample
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case s := <-dev.Samples():
			got = append(got, s)
		case <-timeout:
			t.Fatal("samples not received")
		}
	}

	assert.Equal(t, uint32(1000), got[0].Millis)
	assert.Equal(t, []float64{300.5, 299.5}, got[0].Lux)
	assert.Equal(t, uint32(1500), got[1].Millis)
	assert.Equal(t, 302.0, got[1].Combine(CombineMean))
}

func TestSerial_SetDuty(t *testing.T) {
	node := pipePort(t)
	dev := New("/dev/ttyUSB0", 0, 10, nil)

	assert.ErrorIs(t, dev.SetDuty(10), ErrNotConnected)
	require.NoError(t, dev.Connect())
	defer dev.Close()

	lines := make(chan string, 4)
	go func() {
		sc := bufio.NewScanner(node)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	require.NoError(t, dev.SetDuty(0))
	require.NoError(t, dev.SetDuty(0)) // unchanged, not resent
	require.NoError(t, dev.SetDuty(200))
	assert.ErrorIs(t, dev.SetDuty(300), ErrDutyRange)

	assert.Equal(t, "000", <-lines)
	assert.Equal(t, "200", <-lines)
	select {
	case l := <-lines:
		t.Fatalf("unexpected command %q", l)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSerial_GracefulShutdown(t *testing.T) {
	node := pipePort(t)
	dev := New("/dev/ttyUSB0", 0, 10, nil)
	require.NoError(t, dev.Connect())

	go io.WriteString(node, "1,1\n")
	<-dev.Samples()

	require.NoError(t, dev.Close())
	assert.False(t, dev.IsConnected())
	require.NoError(t, dev.Close(), "second close is a no-op")

	select {
	case _, ok := <-dev.Samples():
		assert.False(t, ok, "Channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("Samples channel did not close within timeout")
	}
}

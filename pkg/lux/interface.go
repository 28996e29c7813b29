package lux

// Device defines the interface for lux sensor nodes (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Samples() <-chan RawSample
	SetDuty(duty int) error
	IsConnected() bool
}

var (
	_ Device = (*Serial)(nil)
	_ Device = (*UDP)(nil)
	_ Device = (*Mock)(nil)
)

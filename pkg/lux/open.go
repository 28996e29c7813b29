package lux

import (
	"fmt"
	"log/slog"

	"github.com/itohio/golux/pkg/config"
)

// Sources lists the accepted values of sensor.source.
var Sources = []string{"serial", "udp", "mock"}

// Open creates the device selected by cfg.Sensor.Source without connecting it.
func Open(cfg *config.Config, log *slog.Logger) (Device, error) {
	switch cfg.Sensor.Source {
	case "", "serial":
		return New(cfg.Sensor.Port, cfg.Sensor.BaudRate, DefaultBufferSize, log), nil
	case "udp":
		return NewUDP(cfg.Sensor.UDPAddr, DefaultBufferSize, log), nil
	case "mock":
		return NewMock(&cfg.Mock), nil
	}
	return nil, fmt.Errorf("unknown sensor source %q", cfg.Sensor.Source)
}

//go:build tinygo

package main

import (
	"machine"

	"github.com/chewxy/math32"
)

// veml7700 is an ambient light sensor on its own I2C bus.
type veml7700 struct {
	bus *machine.I2C
	buf [2]byte
}

func (s *veml7700) configure() error {
	s.buf[0] = byte(VEML7700_CONF & 0xff)
	s.buf[1] = byte(VEML7700_CONF >> 8)
	return s.bus.WriteRegister(VEML7700_ADDR, VEML7700_REG_CONF, s.buf[:])
}

// readLux returns the corrected illuminance in lux.
func (s *veml7700) readLux() (float32, error) {
	if err := s.bus.ReadRegister(VEML7700_ADDR, VEML7700_REG_ALS, s.buf[:]); err != nil {
		return 0, err
	}
	raw := uint16(s.buf[0]) | uint16(s.buf[1])<<8
	return correctLux(float32(raw) * VEML7700_RESOLUTION), nil
}

// correctLux applies the VEML7700 non-linearity compensation, which only
// matters above ~1000 lx.
func correctLux(lux float32) float32 {
	if lux <= 1000 {
		return lux
	}
	return 6.0135e-13*math32.Pow(lux, 4) -
		9.3924e-9*math32.Pow(lux, 3) +
		8.1488e-5*math32.Pow(lux, 2) +
		1.0023*lux
}

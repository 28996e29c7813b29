//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 100 // One reading per VEML7700 integration period

	// VEML7700 configuration (gain x1, 100 ms integration)
	VEML7700_ADDR       = 0x10
	VEML7700_REG_CONF   = 0x00
	VEML7700_REG_ALS    = 0x04
	VEML7700_CONF       = 0x0000 // ALS_GAIN=x1, ALS_IT=100ms, power on
	VEML7700_RESOLUTION = 0.0672 // lx per count at gain x1, 100 ms

	// I2C buses, one sensor each (both share the fixed address)
	PIN_SDA0 = machine.D2 // GP28, I2C0
	PIN_SCL0 = machine.D3 // GP29, I2C0
	PIN_SDA1 = machine.D4 // GP6, I2C1
	PIN_SCL1 = machine.D5 // GP7, I2C1

	// LED driver
	PIN_LED       = machine.D8 // GP2, PWM1 channel A
	PWM_PERIOD_NS = 1e9 / 1000 // 1 kHz
	MAX_DUTY      = 255

	// Serial configuration
	// Format "millis,lux1,lux2\n", e.g. "4294967295,120000.00,120000.00\n" is
	// at most 33 bytes. 10 lines/sec * 33 bytes = 330 bytes/sec, far below
	// the 11,520 bytes/sec of 115200 baud.
	UART_BAUD_RATE = 115200
)

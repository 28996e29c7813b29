//go:build tinygo

//go:generate tinygo flash -target=xiao-rp2040

package main

import (
	"machine"
	"time"
)

var (
	sensors = [2]veml7700{
		{bus: machine.I2C0},
		{bus: machine.I2C1},
	}
	console = machine.Serial

	pwm    = machine.PWM1
	ledCh  uint8
	ledTop uint32

	// Timing
	startTime  time.Time
	lastSample time.Time

	// Serial buffer for reading duty commands
	serialBuffer [3]byte
	serialPos    int
)

func main() {
	console.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE})

	machine.I2C0.Configure(machine.I2CConfig{SDA: PIN_SDA0, SCL: PIN_SCL0, Frequency: 400 * machine.KHz})
	machine.I2C1.Configure(machine.I2CConfig{SDA: PIN_SDA1, SCL: PIN_SCL1, Frequency: 400 * machine.KHz})
	for i := range sensors {
		if err := sensors[i].configure(); err != nil {
			println("VEML7700 #", i+1, "not found:", err.Error())
		}
	}

	if err := pwm.Configure(machine.PWMConfig{Period: PWM_PERIOD_NS}); err != nil {
		println("PWM configure failed:", err.Error())
	}
	ch, err := pwm.Channel(PIN_LED)
	if err != nil {
		println("PWM channel failed:", err.Error())
	}
	ledCh = ch
	ledTop = pwm.Top()
	setDuty(0)

	startTime = time.Now()
	lastSample = startTime

	// Main loop
	for {
		now := time.Now()

		processSerial()

		if now.Sub(lastSample) >= SAMPLE_INTERVAL_MS*time.Millisecond {
			outputReadings(now)
			lastSample = now
		}

		time.Sleep(time.Millisecond)
	}
}

// outputReadings prints "millis,lux1,lux2\n". A sensor that fails to read
// reports -1, which the host rejects.
func outputReadings(now time.Time) {
	print(uint32(now.Sub(startTime).Milliseconds()))
	for i := range sensors {
		print(",")
		lux, err := sensors[i].readLux()
		if err != nil {
			print("-1")
			continue
		}
		printLux(lux)
	}
	print("\n")
}

// printLux prints lux with two decimals without pulling in fmt.
func printLux(lux float32) {
	centi := uint32(lux*100 + 0.5)
	print(centi / 100)
	print(".")
	frac := centi % 100
	if frac < 10 {
		print("0")
	}
	print(frac)
}

// processSerial reads duty commands "NNN\n" (000..255).
func processSerial() {
	for console.Buffered() > 0 {
		data, err := console.ReadByte()
		if err != nil {
			break
		}

		switch {
		case data == '\n' || data == '\r':
			if serialPos > 0 {
				applyDuty()
			}
			serialPos = 0
		case data == ' ' || data == '\t':
		case data >= '0' && data <= '9':
			if serialPos < len(serialBuffer) {
				serialBuffer[serialPos] = data
				serialPos++
			}
		default:
			// Invalid character, drop the line
			serialPos = 0
		}
	}
}

func applyDuty() {
	duty := 0
	for _, c := range serialBuffer[:serialPos] {
		duty = duty*10 + int(c-'0')
	}
	if duty > MAX_DUTY {
		return
	}
	setDuty(duty)
}

func setDuty(duty int) {
	pwm.Set(ledCh, ledTop*uint32(duty)/MAX_DUTY)
}

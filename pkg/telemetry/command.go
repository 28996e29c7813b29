package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCommand is returned for malformed LED commands.
var ErrInvalidCommand = errors.New("invalid LED command")

// Command switches the LED between automatic control and a manual brightness.
//
//	{"mode":"manual","brightness":40}
//	{"mode":"auto"}
type Command struct {
	Mode       Mode     `json:"mode"`
	Brightness *float64 `json:"brightness,omitempty"` // percent, manual mode only
}

// CommandHandler receives validated LED commands.
type CommandHandler func(cmd Command)

// ParseCommand decodes and validates a JSON LED command.
func ParseCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if err := cmd.Validate(); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// Validate checks the mode and brightness.
func (c Command) Validate() error {
	switch c.Mode {
	case ModeAuto:
		return nil
	case ModeManual:
		if c.Brightness == nil {
			return fmt.Errorf("%w: manual mode requires brightness", ErrInvalidCommand)
		}
		if b := *c.Brightness; !(b >= 0 && b <= 100) {
			return fmt.Errorf("%w: brightness %g outside 0..100", ErrInvalidCommand, b)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidCommand, c.Mode)
	}
}

package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when total or size is out of range.
	ErrInvalidConfiguration = errors.New("invalid progress bar configuration")

	// ErrTerminalTooSmall is returned when the terminal is narrower than MinWidth.
	ErrTerminalTooSmall = errors.New("terminal window is not large enough")
)

// ConfigError describes the offending construction parameter.
type ConfigError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %d: %s", ErrInvalidConfiguration, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// TerminalError carries the width that was rejected. Fallback is set when
// that width was the default used for an undetectable terminal.
type TerminalError struct {
	Width    int
	Fallback bool
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("%s: %d columns, need at least %d", ErrTerminalTooSmall, e.Width, MinWidth)
}

func (e *TerminalError) Unwrap() error {
	return ErrTerminalTooSmall
}

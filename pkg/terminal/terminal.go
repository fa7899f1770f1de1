/*
Package terminal detects the column count of the terminal a bar is drawn on.

Detection is pluggable through WidthProvider. The usual entry point is
Default, which tries the stdout file descriptor, then the COLUMNS variable,
then the host command (tput or mode):

	w, err := terminal.Default().Width()
	if errors.Is(err, terminal.ErrUnknownWidth) {
	    // fall back to a fixed width
	}
*/
package terminal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrUnknownWidth is returned by providers that cannot tell the width.
var ErrUnknownWidth = errors.New("terminal width unknown")

// WidthProvider reports the current terminal width in columns.
type WidthProvider interface {
	Width() (int, error)
}

// WidthFunc adapts a plain function to WidthProvider.
type WidthFunc func() (int, error)

// Width calls f.
func (f WidthFunc) Width() (int, error) {
	return f()
}

// Static always reports n columns. Zero or negative n reports ErrUnknownWidth.
func Static(n int) WidthProvider {
	return WidthFunc(func() (int, error) {
		if n <= 0 {
			return 0, ErrUnknownWidth
		}
		return n, nil
	})
}

// Unknown never knows the width.
func Unknown() WidthProvider {
	return WidthFunc(func() (int, error) {
		return 0, ErrUnknownWidth
	})
}

// Env reads the COLUMNS environment variable.
func Env() WidthProvider {
	return envProvider{name: "COLUMNS", lookup: os.LookupEnv}
}

type envProvider struct {
	name   string
	lookup func(string) (string, bool)
}

func (p envProvider) Width() (int, error) {
	raw, ok := p.lookup(p.name)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, ErrUnknownWidth
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrUnknownWidth, p.name, raw)
	}
	if n <= 0 {
		return 0, ErrUnknownWidth
	}
	return n, nil
}

// Chain asks each provider in turn and returns the first known width.
func Chain(providers ...WidthProvider) WidthProvider {
	return WidthFunc(func() (int, error) {
		var errs []error
		for _, p := range providers {
			if p == nil {
				continue
			}
			n, err := p.Width()
			if err == nil && n > 0 {
				return n, nil
			}
			if err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) == 0 {
			return 0, ErrUnknownWidth
		}
		return 0, fmt.Errorf("%w: %w", ErrUnknownWidth, errors.Join(errs...))
	})
}

// Default is the detection order used by the CLI and by bars built without
// an explicit provider.
func Default() WidthProvider {
	return Chain(FD(os.Stdout.Fd()), Env(), Command())
}

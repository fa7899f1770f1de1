package terminal

import (
	"fmt"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// IsTerminal reports whether fd refers to a terminal, Cygwin ptys included.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// FD queries the size of the terminal behind a file descriptor.
func FD(fd uintptr) WidthProvider {
	return WidthFunc(func() (int, error) {
		if !IsTerminal(fd) {
			return 0, ErrUnknownWidth
		}

		w, _, err := term.GetSize(int(fd))
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrUnknownWidth, err)
		}
		if w <= 0 {
			return 0, ErrUnknownWidth
		}
		return w, nil
	})
}

package terminal

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// commandTimeout bounds how long a host command may take to answer.
const commandTimeout = 2 * time.Second

// Runner executes a host command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	return cmd.Output()
}

// Command asks the host OS: `mode` on Windows, `tput cols` elsewhere.
func Command() WidthProvider {
	return CommandFor(runtime.GOOS, execRunner)
}

// CommandFor builds the command provider for goos using run to execute it.
func CommandFor(goos string, run Runner) WidthProvider {
	return WidthFunc(func() (int, error) {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		if goos == "windows" {
			out, err := run(ctx, "mode")
			if err != nil {
				return 0, fmt.Errorf("%w: mode: %w", ErrUnknownWidth, err)
			}
			return ParseModeOutput(string(out))
		}

		out, err := run(ctx, "tput", "cols")
		if err != nil {
			return 0, fmt.Errorf("%w: tput: %w", ErrUnknownWidth, err)
		}
		return ParseTputOutput(string(out))
	})
}

// ParseTputOutput reads the single number printed by `tput cols`.
func ParseTputOutput(out string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil || n <= 0 {
		return 0, ErrUnknownWidth
	}
	return n, nil
}

var modeColumns = regexp.MustCompile(`(?i)^\s*columns:?\s*(\d+)\s*$`)

// ParseModeOutput finds the "Columns: N" line in the console section of the
// Windows `mode` command output.
func ParseModeOutput(out string) (int, error) {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		m := modeColumns.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			break
		}
		return n, nil
	}
	return 0, ErrUnknownWidth
}

package progress

import (
	"io"
	"time"

	"github.com/sonemaro/termbar/pkg/terminal"
)

const (
	// DoneGlyph fills the completed part of the bar.
	DoneGlyph = '='

	// EmptyGlyph fills the remaining part of the bar.
	EmptyGlyph = ' '

	// TimerColumns is the right-aligned width of the remaining time.
	TimerColumns = 20

	// UnknownETA is shown when no estimate is available yet.
	UnknownETA = "---"
)

// Config holds the construction parameters of a Bar
type Config struct {
	// Total is the number of operations to track (required, >= 1)
	Total int

	// Size is the requested bar size in columns, brackets included
	// (0 = 40, otherwise >= 10)
	Size int

	// NoPercentage hides the " NNN%" field
	NoPercentage bool

	// NoCounter hides the " current/total" field
	NoCounter bool

	// NoTimer hides the remaining time field
	NoTimer bool

	// Width reports the terminal width (nil = terminal.Default())
	Width terminal.WidthProvider

	// DefaultWidth is used when the width is unknown (0 = 80)
	DefaultWidth int

	// Sink receives rendered lines (nil = stdout)
	Sink Sink

	// Diagnostics receives the width fallback warning (nil = stderr)
	Diagnostics io.Writer

	// Clock returns the current time (nil = time.Now)
	Clock func() time.Time
}

// Statistics is the numeric view of the bar state
type Statistics struct {
	Current  int
	Total    int
	Ratio    float64
	Finished bool

	StartTime   time.Time
	ElapsedTime time.Duration

	// RemainingTime is the estimate shown by the timer field. It is zero
	// when finished and when no estimate exists; HasEstimate tells the two
	// apart.
	RemainingTime time.Duration
	HasEstimate   bool
}

/*
Package layout decides how a progress bar fits into the terminal.

Given the operation count, the requested bar size and the optional fields,
New returns a Plan whose bar and enabled fields fit the terminal width.
When space is short, optional fields are dropped widest first; only when
none are left is the bar itself shrunk to the terminal width.

	plan, err := layout.New(layout.Request{
	    Total:      1000,
	    Size:       40,
	    Percentage: true,
	    Counter:    true,
	    Timer:      true,
	    Width:      terminal.Default(),
	})
*/
package layout

import (
	"sort"
	"strconv"

	"github.com/sonemaro/termbar/pkg/terminal"
)

const (
	// MinSize is the smallest bar, brackets included.
	MinSize = 10

	// MinWidth is the narrowest terminal a bar can be drawn in.
	MinWidth = 10

	// DefaultSize is the bar size used when none is requested.
	DefaultSize = 40

	// DefaultWidth is substituted when the terminal width is unknown.
	DefaultWidth = 80

	// PercentageWidth covers " NNN%".
	PercentageWidth = 5

	// TimerWidth covers a space and a 20 column right-aligned duration.
	TimerWidth = 21
)

// Field names an optional field printed after the bar.
type Field string

const (
	FieldPercentage Field = "percentage"
	FieldCounter    Field = "counter"
	FieldTimer      Field = "timer"
)

// Request holds the construction parameters of a bar.
type Request struct {
	// Total is the number of operations, at least 1.
	Total int

	// Size is the requested bar size, at least MinSize.
	Size int

	Percentage bool
	Counter    bool
	Timer      bool

	// Width reports the terminal width. Nil means unknown.
	Width terminal.WidthProvider

	// DefaultWidth replaces an unknown width. Zero means DefaultWidth.
	DefaultWidth int
}

// Plan is the layout decision for one bar. It does not change after New.
type Plan struct {
	Total    int `json:"total" yaml:"total"`
	BarWidth int `json:"barWidth" yaml:"barWidth"`

	ShowPercentage bool `json:"showPercentage" yaml:"showPercentage"`
	ShowCounter    bool `json:"showCounter" yaml:"showCounter"`
	ShowTimer      bool `json:"showTimer" yaml:"showTimer"`

	// TerminalWidth is the width the plan was fitted to.
	TerminalWidth int `json:"terminalWidth" yaml:"terminalWidth"`

	// WidthFallback is set when the terminal width could not be detected
	// and DefaultWidth was used instead.
	WidthFallback bool `json:"widthFallback" yaml:"widthFallback"`

	// Dropped lists the fields disabled to make room, in eviction order.
	Dropped []Field `json:"dropped,omitempty" yaml:"dropped,omitempty"`
}

// Enabled reports whether f survived planning.
func (p Plan) Enabled(f Field) bool {
	switch f {
	case FieldPercentage:
		return p.ShowPercentage
	case FieldCounter:
		return p.ShowCounter
	case FieldTimer:
		return p.ShowTimer
	}
	return false
}

// LineWidth is the number of columns a rendered line occupies.
func (p Plan) LineWidth() int {
	w := p.BarWidth
	for _, fw := range fieldWidths(p.Total, p.ShowPercentage, p.ShowCounter, p.ShowTimer) {
		w += fw.width
	}
	return w
}

type fieldWidth struct {
	field Field
	width int
}

// Digits returns the number of decimal digits of n.
func Digits(n int) int {
	if n < 0 {
		n = -n
	}
	return len(strconv.Itoa(n))
}

// CounterWidth is the width of " current/total" for the given total.
func CounterWidth(total int) int {
	return 2 * (Digits(total) + 1)
}

// fieldWidths lists the requested fields, widest first.
func fieldWidths(total int, percentage, counter, timer bool) []fieldWidth {
	fields := make([]fieldWidth, 0, 3)
	if percentage {
		fields = append(fields, fieldWidth{FieldPercentage, PercentageWidth})
	}
	if counter {
		fields = append(fields, fieldWidth{FieldCounter, CounterWidth(total)})
	}
	if timer {
		fields = append(fields, fieldWidth{FieldTimer, TimerWidth})
	}

	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].width > fields[j].width
	})
	return fields
}

// New validates r and computes its Plan.
func New(r Request) (Plan, error) {
	if r.Total < 1 {
		return Plan{}, &ConfigError{Field: "total", Value: r.Total, Reason: "there should be at least one operation"}
	}
	if r.Size < MinSize {
		return Plan{}, &ConfigError{Field: "size", Value: r.Size, Reason: "the minimum progress bar size is 10"}
	}

	width, fallback := resolveWidth(r)
	if width < MinWidth {
		return Plan{}, &TerminalError{Width: width, Fallback: fallback}
	}

	return Fit(r.Total, r.Size, r.Percentage, r.Counter, r.Timer, width, fallback), nil
}

// Fit runs the space negotiation for an already validated request.
func Fit(total, size int, percentage, counter, timer bool, width int, fallback bool) Plan {
	plan := Plan{
		Total:          total,
		BarWidth:       size,
		ShowPercentage: percentage,
		ShowCounter:    counter,
		ShowTimer:      timer,
		TerminalWidth:  width,
		WidthFallback:  fallback,
	}

	fields := fieldWidths(total, percentage, counter, timer)
	required := size
	for _, f := range fields {
		required += f.width
	}

	disabled := make(map[Field]bool, len(fields))
	for _, f := range fields {
		if required <= width {
			break
		}
		disabled[f.field] = true
		plan.Dropped = append(plan.Dropped, f.field)
		required -= f.width
	}

	plan.ShowPercentage = percentage && !disabled[FieldPercentage]
	plan.ShowCounter = counter && !disabled[FieldCounter]
	plan.ShowTimer = timer && !disabled[FieldTimer]

	if required > width {
		plan.BarWidth = width
	}

	return plan
}

func resolveWidth(r Request) (int, bool) {
	def := r.DefaultWidth
	if def == 0 {
		def = DefaultWidth
	}
	if r.Width == nil {
		return def, true
	}

	w, err := r.Width.Width()
	if err != nil || w <= 0 {
		return def, true
	}
	return w, false
}

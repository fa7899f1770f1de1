package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/sonemaro/termbar/pkg/layout"
	"github.com/sonemaro/termbar/pkg/logger"
)

// palette holds the text styles. All of them are plain when colors are off.
type palette struct {
	heading *color.Color
	good    *color.Color
	bad     *color.Color
	muted   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		heading: color.New(color.Bold),
		good:    color.New(color.FgGreen),
		bad:     color.New(color.FgRed, color.Bold),
		muted:   color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.heading, p.good, p.bad, p.muted} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// formatText renders the report as aligned "label: value" lines
func (f *formatter) formatText(report *Report) (string, error) {
	f.log.Debug("Formatting text output")

	if f.config.WithColors {
		f.log.Debug("Applying color formatting")
	}
	p := newPalette(f.config.WithColors)

	var b strings.Builder
	f.writePlan(&b, p, report.Plan)

	if report.Summary != nil {
		f.log.Debug("Adding summary to output")
		b.WriteString("\n")
		f.writeSummary(&b, p, report.Summary)
	}

	return b.String(), nil
}

func (f *formatter) writePlan(b *strings.Builder, p palette, plan layout.Plan) {
	f.log.WithFields(logger.Fields{
		"barWidth": plan.BarWidth,
		"dropped":  len(plan.Dropped),
	}).Trace("Writing plan section")

	b.WriteString(p.heading.Sprint("Layout:") + "\n")
	writeRow(b, "Operations", humanize.Comma(int64(plan.Total)))

	terminalWidth := fmt.Sprintf("%d", plan.TerminalWidth)
	if plan.WidthFallback {
		terminalWidth += p.muted.Sprint(" (default, detection failed)")
	}
	writeRow(b, "Terminal Width", terminalWidth)
	writeRow(b, "Bar Width", fmt.Sprintf("%d", plan.BarWidth))
	writeRow(b, "Line Width", fmt.Sprintf("%d", plan.LineWidth()))

	var fields []string
	for _, field := range []layout.Field{layout.FieldPercentage, layout.FieldCounter, layout.FieldTimer} {
		if plan.Enabled(field) {
			fields = append(fields, string(field))
		}
	}
	writeRow(b, "Fields", joinOrNone(fields))

	if len(plan.Dropped) > 0 {
		dropped := make([]string, len(plan.Dropped))
		for i, field := range plan.Dropped {
			dropped[i] = string(field)
		}
		writeRow(b, "Dropped", p.muted.Sprint(strings.Join(dropped, ", ")))
	}
}

func (f *formatter) writeSummary(b *strings.Builder, p palette, s *Summary) {
	b.WriteString(p.heading.Sprint("Summary:") + "\n")
	writeRow(b, "Processed", fmt.Sprintf("%s/%s", humanize.Comma(int64(s.Processed)), humanize.Comma(int64(s.Total))))
	writeRow(b, "Succeeded", p.good.Sprint(humanize.Comma(int64(s.Succeeded))))

	failed := humanize.Comma(int64(s.Failed))
	if s.Failed > 0 {
		failed = p.bad.Sprint(failed)
	}
	writeRow(b, "Failed", failed)

	if s.Bytes > 0 {
		writeRow(b, "Read", humanize.Bytes(uint64(s.Bytes)))
	}
	writeRow(b, "Elapsed", s.Elapsed.Round(time.Millisecond).String())

	if s.Canceled {
		writeRow(b, "Status", p.bad.Sprint("canceled"))
	}

	if len(s.Failures) > 0 {
		b.WriteString(p.heading.Sprint("Failures:") + "\n")
		for _, fail := range s.Failures {
			name := fail.Name
			if name == "" {
				name = fmt.Sprintf("#%d", fail.ID)
			}
			b.WriteString(fmt.Sprintf("  %s: %s\n", name, p.bad.Sprint(fail.Error)))
		}
	}
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(fmt.Sprintf("  %-15s %s\n", label+":", value))
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

/*
Package progress draws a single-line progress bar that rewrites itself on
every update:

	[=================                       ]  42%  42/100                 1m3s

The layout is planned once by package layout; the bar then only renders.

	bar, err := progress.New(progress.Config{Total: len(jobs)}, log)
	if err != nil {
	    return err
	}
	for i, job := range jobs {
	    job.Do()
	    bar.Update(i + 1)
	}

A Bar is not safe for concurrent use. Callers that finish operations on
several goroutines must serialize their calls to Update.
*/
package progress

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sonemaro/termbar/pkg/layout"
	"github.com/sonemaro/termbar/pkg/logger"
	"github.com/sonemaro/termbar/pkg/terminal"
)

// Bar tracks one batch of operations.
type Bar struct {
	plan layout.Plan
	sink Sink
	log  logger.Logger
	now  func() time.Time

	// State
	startTime   time.Time
	finished    bool
	lastCurrent int
	lastLine    string
}

// New plans the layout and returns a bar ready for its first Update.
// It fails with layout.ErrInvalidConfiguration or layout.ErrTerminalTooSmall.
func New(config Config, log logger.Logger) (*Bar, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if config.Size == 0 {
		config.Size = layout.DefaultSize
	}
	if config.Width == nil {
		config.Width = terminal.Default()
	}
	if config.Sink == nil {
		config.Sink = NewWriterSink(os.Stdout)
	}
	if config.Diagnostics == nil {
		config.Diagnostics = os.Stderr
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	plan, err := layout.New(layout.Request{
		Total:        config.Total,
		Size:         config.Size,
		Percentage:   !config.NoPercentage,
		Counter:      !config.NoCounter,
		Timer:        !config.NoTimer,
		Width:        config.Width,
		DefaultWidth: config.DefaultWidth,
	})
	if err != nil {
		var termErr *layout.TerminalError
		if errors.As(err, &termErr) && termErr.Fallback {
			warnWidthFallback(config.Diagnostics, log, termErr.Width)
		}
		log.WithFields(logger.Fields{
			"total": config.Total,
			"size":  config.Size,
			"error": err.Error(),
		}).Error("Failed to plan progress bar")
		return nil, fmt.Errorf("progress bar: %w", err)
	}

	if plan.WidthFallback {
		warnWidthFallback(config.Diagnostics, log, plan.TerminalWidth)
	}

	b := &Bar{
		plan:      plan,
		sink:      config.Sink,
		log:       log,
		now:       config.Clock,
		startTime: config.Clock(),
	}

	log.WithFields(logger.Fields{
		"total":      plan.Total,
		"barWidth":   plan.BarWidth,
		"terminal":   plan.TerminalWidth,
		"percentage": plan.ShowPercentage,
		"counter":    plan.ShowCounter,
		"timer":      plan.ShowTimer,
		"dropped":    plan.Dropped,
	}).Debug("Created progress bar")

	return b, nil
}

// Update renders the bar for current completed operations. Values outside
// [0, total] are clamped. Reaching total finishes the bar; later calls do
// nothing.
func (b *Bar) Update(current int) {
	if b.finished {
		return
	}

	if current < 0 {
		current = 0
	}
	if current > b.plan.Total {
		current = b.plan.Total
	}
	b.lastCurrent = current

	if current == b.plan.Total {
		b.finished = true
	}

	b.lastLine = renderLine(b.plan, current, b.finished, b.now().Sub(b.startTime))

	b.log.WithFields(logger.Fields{
		"current":  current,
		"total":    b.plan.Total,
		"finished": b.finished,
	}).Trace("Rendering progress")

	if err := b.sink.WriteLine(b.lastLine, b.finished); err != nil {
		b.log.WithFields(logger.Fields{
			"error": err.Error(),
		}).Error("Failed to write progress line")
	}
}

// Increment records one more completed operation.
func (b *Bar) Increment() {
	b.Update(b.lastCurrent + 1)
}

// Finished reports whether total was reached.
func (b *Bar) Finished() bool {
	return b.finished
}

// Line returns the last rendered line, without line terminator.
func (b *Bar) Line() string {
	return b.lastLine
}

// Current returns the last clamped value passed to Update.
func (b *Bar) Current() int {
	return b.lastCurrent
}

// Plan returns the layout the bar was built with.
func (b *Bar) Plan() layout.Plan {
	return b.plan
}

// Stats computes the numbers behind the current line.
func (b *Bar) Stats() Statistics {
	now := b.now()
	elapsed := now.Sub(b.startTime)

	stats := Statistics{
		Current:     b.lastCurrent,
		Total:       b.plan.Total,
		Ratio:       float64(b.lastCurrent) / float64(b.plan.Total),
		Finished:    b.finished,
		StartTime:   b.startTime,
		ElapsedTime: elapsed,
	}

	if b.finished {
		stats.HasEstimate = true
		return stats
	}

	if secs, ok := remainingSeconds(b.lastCurrent, b.plan.Total, elapsed); ok && secs > 0 {
		stats.HasEstimate = true
		if secs > uint64(maxDuration/time.Second) {
			stats.RemainingTime = maxDuration
		} else {
			stats.RemainingTime = time.Duration(secs) * time.Second
		}
	}

	return stats
}

const maxDuration = time.Duration(1<<63 - 1)

func warnWidthFallback(w io.Writer, log logger.Logger, width int) {
	fmt.Fprintf(w, "Impossible to detect the window size. Default value of %d is used.\n", width)
	log.WithFields(logger.Fields{
		"width": width,
	}).Warn("Terminal width unknown, using default")
}

package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sonemaro/termbar/pkg/logger"
	"github.com/sonemaro/termbar/pkg/output"
)

// maxLineSize bounds a single input line.
const maxLineSize = 1024 * 1024

// CountLines advances a bar of total operations once per line read from
// stdin. When outPath is set, every line is copied to that file. Lines past
// total are still counted and copied but no longer move the bar.
func (a *App) CountLines(ctx context.Context, total int, outPath string) (*output.Report, error) {
	bar, err := a.newBar(total)
	if err != nil {
		return nil, err
	}

	var out io.Writer = io.Discard
	if outPath != "" {
		f, err := a.fs.Create(outPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		bw := bufio.NewWriter(f)
		defer bw.Flush()
		out = bw
	}

	a.log.WithFields(logger.Fields{
		"total": total,
		"out":   outPath,
	}).Info("Counting lines")

	start := time.Now()
	summary := &output.Summary{Total: total}

	scanner := bufio.NewScanner(a.stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			summary.Canceled = true
			break
		}

		line := scanner.Bytes()
		summary.Bytes += int64(len(line)) + 1
		summary.Processed++
		summary.Succeeded++

		if _, err := fmt.Fprintf(out, "%s\n", line); err != nil {
			a.endLine(bar)
			return nil, fmt.Errorf("failed to copy line %d: %w", summary.Processed, err)
		}

		bar.Increment()
	}
	summary.Elapsed = time.Since(start)
	a.endLine(bar)

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	a.log.WithFields(logger.Fields{
		"lines":    summary.Processed,
		"bytes":    summary.Bytes,
		"finished": bar.Finished(),
	}).Info("Line count completed")

	return &output.Report{Command: "lines", Plan: bar.Plan(), Summary: summary}, nil
}

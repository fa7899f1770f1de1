package app

import (
	"context"
	"time"

	"github.com/sonemaro/termbar/pkg/logger"
	"github.com/sonemaro/termbar/pkg/output"
)

// Demo fills a bar of total operations, waiting delay before each one.
func (a *App) Demo(ctx context.Context, total int, delay time.Duration) (*output.Report, error) {
	bar, err := a.newBar(total)
	if err != nil {
		return nil, err
	}

	a.log.WithFields(logger.Fields{
		"total": total,
		"delay": delay,
	}).Debug("Starting demo")

	start := time.Now()
	summary := &output.Summary{Total: total}

	bar.Update(0)
	for i := 1; i <= total; i++ {
		if err := sleep(ctx, delay); err != nil {
			summary.Canceled = true
			break
		}
		bar.Update(i)
		summary.Processed++
		summary.Succeeded++
	}
	summary.Elapsed = time.Since(start)
	a.endLine(bar)

	return &output.Report{Command: "demo", Plan: bar.Plan(), Summary: summary}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package output

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sonemaro/termbar/pkg/worker"
)

// Summary describes a finished (or interrupted) batch.
type Summary struct {
	// Total is the number of operations the bar was created for
	Total int `json:"total" yaml:"total"`

	// Processed counts operations that reported back, failed or not
	Processed int `json:"processed" yaml:"processed"`

	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`

	// Bytes is the amount of input read, when the command reads a stream
	Bytes int64 `json:"bytes,omitempty" yaml:"bytes,omitempty"`

	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`

	// Canceled is set when the batch stopped before Total was reached
	Canceled bool `json:"canceled" yaml:"canceled"`

	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Failure is one failed operation.
type Failure struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Error string `json:"error" yaml:"error"`
}

// Summarize builds a summary from worker results. A result whose Data is a
// string or fmt.Stringer is named after it in the failure list.
func Summarize(total int, results []worker.Result, elapsed time.Duration) *Summary {
	s := &Summary{
		Total:     total,
		Processed: len(results),
		Elapsed:   elapsed,
	}

	for _, r := range results {
		if r.Err == nil {
			s.Succeeded++
			continue
		}
		s.Failed++
		if errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded) {
			s.Canceled = true
		}
		s.Failures = append(s.Failures, Failure{
			ID:    r.ID,
			Name:  resultName(r),
			Error: r.Err.Error(),
		})
	}

	if s.Processed < s.Total {
		s.Canceled = true
	}

	return s
}

func resultName(r worker.Result) string {
	switch d := r.Data.(type) {
	case string:
		return d
	case fmt.Stringer:
		return d.String()
	}
	return ""
}

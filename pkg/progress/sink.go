package progress

import (
	"errors"
	"io"
)

// ErrSinkClosed is returned by a WriterSink after its final line.
var ErrSinkClosed = errors.New("progress sink already received its final line")

// Sink receives every rendered line. A non-final line replaces the previous
// one on screen; the final line is terminated and nothing follows it.
type Sink interface {
	WriteLine(text string, final bool) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(text string, final bool) error

// WriteLine calls f.
func (f SinkFunc) WriteLine(text string, final bool) error {
	return f(text, final)
}

// Discard drops every line.
var Discard Sink = SinkFunc(func(string, bool) error { return nil })

type flusher interface {
	Flush() error
}

// WriterSink draws lines on an io.Writer using a carriage return to go back
// to column 0 and a newline after the final line.
type WriterSink struct {
	w      io.Writer
	closed bool
}

// NewWriterSink wraps w. Writers with a Flush method are flushed after
// every line.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// WriteLine implements Sink.
func (s *WriterSink) WriteLine(text string, final bool) error {
	if s.closed {
		return ErrSinkClosed
	}

	end := "\r"
	if final {
		end = "\n"
		s.closed = true
	}

	if _, err := io.WriteString(s.w, text+end); err != nil {
		return err
	}
	if f, ok := s.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Closed reports whether the final line was written.
func (s *WriterSink) Closed() bool {
	return s.closed
}

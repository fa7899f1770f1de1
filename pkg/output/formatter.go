/*
Package output renders termbar reports: the layout plan chosen for a bar
and, after a batch, a summary of what ran. Reports can be printed as
colored text, JSON or YAML.

Basic usage:

	formatter := output.NewFormatter(output.Config{
		Format:     output.FormatText,
		WithColors: true,
	}, log)

	result, err := formatter.Format(&output.Report{Plan: bar.Plan()})
*/
package output

import (
	"errors"
	"fmt"
	"time"

	"github.com/sonemaro/termbar/pkg/layout"
	"github.com/sonemaro/termbar/pkg/logger"
)

// Format represents the output format type
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrNilReport is returned when Format is given nothing to render.
var ErrNilReport = errors.New("nil report provided for formatting")

// Config holds formatter configuration
type Config struct {
	Format     Format
	WithColors bool
}

// Report is everything a command prints after it is done.
type Report struct {
	// Command names the subcommand that produced the report
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	Plan    layout.Plan `json:"plan" yaml:"plan"`
	Summary *Summary    `json:"summary,omitempty" yaml:"summary,omitempty"`

	Generated time.Time `json:"generated" yaml:"generated"`
}

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(*Report) (string, error)
}

// formatter implements the Formatter interface
type formatter struct {
	config Config
	log    logger.Logger
}

// NewFormatter creates a new formatter instance
func NewFormatter(config Config, log logger.Logger) Formatter {
	if log == nil {
		log = logger.NewNop()
	}
	return &formatter{
		config: config,
		log:    log,
	}
}

// Format renders the report according to the configured format
func (f *formatter) Format(report *Report) (string, error) {
	if report == nil {
		f.log.Error(ErrNilReport.Error())
		return "", ErrNilReport
	}

	f.log.WithFields(logger.Fields{
		"format":     f.config.Format,
		"withColors": f.config.WithColors,
		"command":    report.Command,
	}).Debug("Starting format operation")

	if report.Generated.IsZero() {
		report.Generated = time.Now()
	}

	switch f.config.Format {
	case FormatText, "":
		return f.formatText(report)
	case FormatJSON:
		return f.formatJSON(report)
	case FormatYAML:
		return f.formatYAML(report)
	default:
		err := fmt.Errorf("unsupported format: %s", f.config.Format)
		f.log.Error(err.Error())
		return "", err
	}
}

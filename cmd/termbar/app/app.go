/*
Package app provides the application container behind the termbar CLI. It
wires the configuration, the logger, the progress bar, the worker pool and
the report formatter together and handles graceful shutdown.

Usage:

	a := app.New(cfg, app.Options{Stdin: os.Stdin, Stdout: os.Stdout})
	defer a.Shutdown()

	report, err := a.RunCommands(ctx, commands)
	if report != nil {
	    a.Render(report)
	}
*/
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sonemaro/termbar/internal/config"
	"github.com/sonemaro/termbar/pkg/layout"
	"github.com/sonemaro/termbar/pkg/logger"
	"github.com/sonemaro/termbar/pkg/output"
	"github.com/sonemaro/termbar/pkg/progress"
	"github.com/spf13/afero"
)

// Options carries the process resources the App works with. Zero values
// fall back to the real process streams and file system.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Fs is used for --out and --file paths
	Fs afero.Fs

	// Log overrides the logger built from the configuration
	Log logger.Logger

	// Runner executes one shell command for RunCommands
	Runner CommandRunner

	// Clock is handed to every bar (nil = time.Now)
	Clock func() time.Time

	// Exit terminates the process on a forced shutdown (nil = os.Exit)
	Exit func(code int)
}

// App represents the main application container
type App struct {
	config *config.Config
	log    logger.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	fs     afero.Fs
	runner CommandRunner
	clock  func() time.Time
	exit   func(code int)

	formatter output.Formatter

	ctx        context.Context
	cancel     context.CancelFunc
	stopSignal func()
	done       chan struct{}
	mu         sync.Mutex
	closed     bool
}

// New creates a new application instance
func New(cfg *config.Config, opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		config: cfg,
		log:    opts.Log,
		stdin:  opts.Stdin,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
		fs:     opts.Fs,
		runner: opts.Runner,
		clock:  opts.Clock,
		exit:   opts.Exit,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if a.stdin == nil {
		a.stdin = os.Stdin
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	if a.fs == nil {
		a.fs = afero.NewOsFs()
	}
	if a.runner == nil {
		a.runner = ShellRunner
	}
	if a.exit == nil {
		a.exit = os.Exit
	}

	a.initLogger()
	a.initComponents()

	a.log.WithFields(logger.Fields{
		"workers": cfg.Workers,
		"verbose": cfg.Verbose,
		"output":  cfg.Output,
	}).Debug("Application initialized")

	return a
}

// Context is canceled by Shutdown and by the first interrupt signal.
func (a *App) Context() context.Context {
	return a.ctx
}

// Shutdown performs a graceful shutdown of the application
func (a *App) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	a.log.Debug("Initiating graceful shutdown")

	a.cancel()
	if a.stopSignal != nil {
		a.stopSignal()
	}

	close(a.done)
	a.log.Debug("Shutdown complete")
	return nil
}

// initLogger initializes the application logger
func (a *App) initLogger() {
	if a.log != nil {
		return
	}

	a.log = logger.NewLogger(logger.Config{
		Verbosity: a.config.Verbose,
		Output:    a.stderr,
	})

	a.log.WithFields(logger.Fields{
		"verbosity": a.config.Verbose,
	}).Debug("Logger initialized")
}

// initComponents initializes all application components
func (a *App) initComponents() {
	a.log.Debug("Initializing application components")

	a.formatter = output.NewFormatter(output.Config{
		Format:     output.Format(a.config.Output),
		WithColors: !a.config.NoColor,
	}, a.log)

	a.log.Debug("Components initialized successfully")
}

// newBar creates a bar for total operations drawing on stdout.
func (a *App) newBar(total int) (*progress.Bar, error) {
	pc := a.config.ProgressConfig(total)
	pc.Sink = progress.NewWriterSink(a.stdout)
	pc.Diagnostics = a.stderr
	pc.Clock = a.clock

	bar, err := progress.New(pc, a.log)
	if err != nil {
		a.log.WithFields(logger.Fields{
			"total": total,
			"error": err,
		}).Error("Failed to create progress bar")
		return nil, err
	}
	return bar, nil
}

// endLine moves the cursor below an unfinished bar so that following
// output does not overwrite it.
func (a *App) endLine(bar *progress.Bar) {
	if bar.Line() != "" && !bar.Finished() {
		fmt.Fprintln(a.stdout)
	}
}

// Plan returns the layout a bar for total operations would get.
func (a *App) Plan(total int) (*output.Report, error) {
	pc := a.config.ProgressConfig(total)

	plan, err := layout.New(layout.Request{
		Total:        pc.Total,
		Size:         pc.Size,
		Percentage:   !pc.NoPercentage,
		Counter:      !pc.NoCounter,
		Timer:        !pc.NoTimer,
		Width:        pc.Width,
		DefaultWidth: pc.DefaultWidth,
	})
	if err != nil {
		return nil, fmt.Errorf("layout planning failed: %w", err)
	}

	a.log.WithFields(logger.Fields{
		"total":    total,
		"barWidth": plan.BarWidth,
		"dropped":  plan.Dropped,
	}).Debug("Layout planned")

	return &output.Report{Command: "plan", Plan: plan}, nil
}

// Render formats the report and writes it to stdout
func (a *App) Render(report *output.Report) error {
	formatted, err := a.formatter.Format(report)
	if err != nil {
		return fmt.Errorf("output formatting failed: %w", err)
	}

	if _, err := fmt.Fprintln(a.stdout, formatted); err != nil {
		a.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to write to stdout")
		return err
	}
	return nil
}

package app

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/sonemaro/termbar/pkg/logger"
	"github.com/sonemaro/termbar/pkg/output"
	"github.com/sonemaro/termbar/pkg/worker"
)

// ErrNoCommands is returned when the command list is empty.
var ErrNoCommands = errors.New("no commands to run")

// CommandRunner executes one shell command line.
type CommandRunner func(ctx context.Context, command string) error

// ShellRunner runs command through sh -c, or cmd /C on Windows. The
// command's output is discarded; on failure its last output line is added
// to the error.
func ShellRunner(ctx context.Context, command string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if last := lastLine(out.String()); last != "" {
			return fmt.Errorf("%w: %s", err, last)
		}
		return err
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\r\n\t ")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// ReadCommands returns the non-empty lines of r that are not # comments.
func ReadCommands(r io.Reader) ([]string, error) {
	var commands []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read commands: %w", err)
	}
	return commands, nil
}

// LoadCommands reads commands from path, or from stdin when path is empty.
func (a *App) LoadCommands(path string) ([]string, error) {
	if path == "" {
		return ReadCommands(a.stdin)
	}

	f, err := a.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open command file: %w", err)
	}
	defer f.Close()

	return ReadCommands(f)
}

// RunCommands runs every command on the worker pool and advances one bar
// per finished command. The report is returned even when some commands
// failed; the error then says how many.
func (a *App) RunCommands(ctx context.Context, commands []string) (*output.Report, error) {
	if len(commands) == 0 {
		return nil, ErrNoCommands
	}

	bar, err := a.newBar(len(commands))
	if err != nil {
		return nil, err
	}

	pool, err := worker.NewPool(worker.Config{
		Workers:   a.config.Workers,
		RateLimit: a.config.RateLimit,
		OnDone: func(r worker.Result) {
			if r.Err != nil {
				a.log.WithFields(logger.Fields{
					"id":      r.ID,
					"command": r.Data,
					"error":   r.Err,
				}).Warn("Command failed")
			}
			bar.Increment()
		},
	})
	if err != nil {
		a.log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to initialize worker pool")
		return nil, fmt.Errorf("failed to initialize worker pool: %w", err)
	}

	a.log.WithFields(logger.Fields{
		"commands":  len(commands),
		"workers":   a.config.Workers,
		"rateLimit": a.config.RateLimit,
	}).Info("Running commands")

	start := time.Now()
	if err := pool.Start(ctx); err != nil {
		return nil, err
	}
	defer pool.Stop()

	for i, command := range commands {
		if err := pool.Submit(worker.Task{ID: i, Execute: a.commandTask(command)}); err != nil {
			a.log.WithFields(logger.Fields{
				"id":    i,
				"error": err,
			}).Warn("Stopped submitting commands")
			break
		}
	}

	results, _ := pool.Wait()
	a.endLine(bar)

	summary := output.Summarize(len(commands), results, time.Since(start))
	report := &output.Report{Command: "run", Plan: bar.Plan(), Summary: summary}

	a.log.WithFields(logger.Fields{
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"elapsed":   summary.Elapsed,
	}).Info("Commands completed")

	if summary.Canceled {
		return report, fmt.Errorf("run canceled after %d of %d commands", summary.Processed, len(commands))
	}
	if summary.Failed > 0 {
		return report, fmt.Errorf("%d of %d commands failed", summary.Failed, len(commands))
	}
	return report, nil
}

func (a *App) commandTask(command string) func(context.Context) (worker.Result, error) {
	return func(ctx context.Context) (res worker.Result, err error) {
		res.Data = command

		defer func() {
			if r := recover(); r != nil {
				a.log.WithFields(logger.Fields{
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("Recovered from panic")
				err = fmt.Errorf("panic: %v", r)
			}
		}()

		a.log.WithFields(logger.Fields{
			"command": command,
		}).Trace("Starting command")

		return res, a.runner(ctx, command)
	}
}

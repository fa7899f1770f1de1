package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/sonemaro/termbar/internal/config"
	"github.com/sonemaro/termbar/pkg/layout"
	"github.com/sonemaro/termbar/pkg/logger"
	"github.com/sonemaro/termbar/pkg/output"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for writes from worker goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	app    *App
	stdout *syncBuffer
	stderr *syncBuffer
	fs     afero.Fs
	exits  chan int
}

func testConfig() config.Config {
	return config.Config{
		Size:         20,
		NoTimer:      true,
		Width:        80,
		DefaultWidth: 80,
		Workers:      2,
		Output:       "text",
		NoColor:      true,
	}
}

func newTestApp(t *testing.T, cfg config.Config, stdin string, runner CommandRunner) *testEnv {
	t.Helper()

	env := &testEnv{
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
		fs:     afero.NewMemMapFs(),
		exits:  make(chan int, 1),
	}
	env.app = New(&cfg, Options{
		Stdin:  strings.NewReader(stdin),
		Stdout: env.stdout,
		Stderr: env.stderr,
		Fs:     env.fs,
		Log:    logger.NewNop(),
		Runner: runner,
		Exit:   func(code int) { env.exits <- code },
	})
	t.Cleanup(func() { env.app.Shutdown() })

	return env
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		total      int
		wantSuffix string
		processed  int
		bytes      int64
	}{
		{
			name:       "exact count",
			input:      "a\nb\nc\n",
			total:      3,
			wantSuffix: "[==================] 100% 3/3\n",
			processed:  3,
			bytes:      6,
		},
		{
			name:       "short input leaves the bar unfinished",
			input:      "alpha\nbeta\n",
			total:      5,
			wantSuffix: "[========          ]  40% 2/5\r\n",
			processed:  2,
			bytes:      11,
		},
		{
			name:       "extra lines are counted but do not redraw",
			input:      "1\n2\n3\n4\n",
			total:      2,
			wantSuffix: "[==================] 100% 2/2\n",
			processed:  4,
			bytes:      8,
		},
		{
			name:       "missing trailing newline",
			input:      "x\ny",
			total:      2,
			wantSuffix: "[==================] 100% 2/2\n",
			processed:  2,
			bytes:      4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestApp(t, testConfig(), tt.input, nil)

			report, err := env.app.CountLines(context.Background(), tt.total, "")
			require.NoError(t, err)

			assert.True(t, strings.HasSuffix(env.stdout.String(), tt.wantSuffix), "stdout: %q", env.stdout.String())
			assert.Equal(t, "lines", report.Command)
			assert.Equal(t, tt.processed, report.Summary.Processed)
			assert.Equal(t, tt.bytes, report.Summary.Bytes)
			assert.Equal(t, tt.total, report.Summary.Total)
			assert.False(t, report.Summary.Canceled)
		})
	}
}

func TestCountLinesCopiesToFile(t *testing.T) {
	env := newTestApp(t, testConfig(), "first\nsecond\nthird\n", nil)

	_, err := env.app.CountLines(context.Background(), 3, "/copy.txt")
	require.NoError(t, err)

	copied, err := afero.ReadFile(env.fs, "/copy.txt")
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\nthird\n", string(copied))

	assert.True(t, strings.HasPrefix(env.stdout.String(), "[======            ]  33% 1/3\r"))
}

func TestCountLinesErrors(t *testing.T) {
	t.Run("invalid total", func(t *testing.T) {
		env := newTestApp(t, testConfig(), "", nil)

		_, err := env.app.CountLines(context.Background(), 0, "")
		assert.ErrorIs(t, err, layout.ErrInvalidConfiguration)
		assert.Empty(t, env.stdout.String())
	})

	t.Run("canceled context", func(t *testing.T) {
		env := newTestApp(t, testConfig(), "a\nb\n", nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report, err := env.app.CountLines(ctx, 2, "")
		require.NoError(t, err)
		assert.True(t, report.Summary.Canceled)
		assert.Zero(t, report.Summary.Processed)
	})

	t.Run("read only file system", func(t *testing.T) {
		env := newTestApp(t, testConfig(), "a\n", nil)
		env.app.fs = afero.NewReadOnlyFs(afero.NewMemMapFs())

		_, err := env.app.CountLines(context.Background(), 1, "/out.txt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create output file")
	})
}

func TestRunCommands(t *testing.T) {
	var mu sync.Mutex
	var ran []string

	runner := func(ctx context.Context, command string) error {
		mu.Lock()
		ran = append(ran, command)
		mu.Unlock()
		if strings.HasPrefix(command, "fail") {
			return errors.New("exit status 1")
		}
		return nil
	}

	env := newTestApp(t, testConfig(), "", runner)

	report, err := env.app.RunCommands(context.Background(), []string{"ok 1", "fail 2", "ok 3"})
	require.Error(t, err)
	assert.EqualError(t, err, "1 of 3 commands failed")

	require.NotNil(t, report)
	assert.Equal(t, "run", report.Command)
	assert.Equal(t, 3, report.Summary.Processed)
	assert.Equal(t, 2, report.Summary.Succeeded)
	assert.Equal(t, []output.Failure{{ID: 1, Name: "fail 2", Error: "exit status 1"}}, report.Summary.Failures)
	assert.ElementsMatch(t, []string{"ok 1", "fail 2", "ok 3"}, ran)

	out := env.stdout.String()
	assert.True(t, strings.HasSuffix(out, "[==================] 100% 3/3\n"), "stdout: %q", out)
	assert.Equal(t, 2, strings.Count(out, "\r"))
}

func TestRunCommandsAllSucceed(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 4

	env := newTestApp(t, cfg, "", func(ctx context.Context, command string) error { return nil })

	commands := make([]string, 25)
	for i := range commands {
		commands[i] = "true"
	}

	report, err := env.app.RunCommands(context.Background(), commands)
	require.NoError(t, err)
	assert.Equal(t, 25, report.Summary.Succeeded)
	assert.True(t, strings.HasSuffix(env.stdout.String(), "100% 25/25\n"))
}

func TestRunCommandsRecoversPanics(t *testing.T) {
	env := newTestApp(t, testConfig(), "", func(ctx context.Context, command string) error {
		panic("runner exploded")
	})

	report, err := env.app.RunCommands(context.Background(), []string{"x"})
	require.Error(t, err)
	require.Len(t, report.Summary.Failures, 1)
	assert.Equal(t, "panic: runner exploded", report.Summary.Failures[0].Error)
	assert.Equal(t, "x", report.Summary.Failures[0].Name)
}

func TestRunCommandsErrors(t *testing.T) {
	t.Run("no commands", func(t *testing.T) {
		env := newTestApp(t, testConfig(), "", nil)
		_, err := env.app.RunCommands(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNoCommands)
	})

	t.Run("canceled context", func(t *testing.T) {
		env := newTestApp(t, testConfig(), "", func(ctx context.Context, command string) error {
			return nil
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report, err := env.app.RunCommands(ctx, []string{"a", "b", "c"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run canceled")
		assert.True(t, report.Summary.Canceled)
	})

	t.Run("canceled error counts processed commands", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cfg := testConfig()
		cfg.Workers = 1
		env := newTestApp(t, cfg, "", func(ctx context.Context, command string) error {
			if command == "b" {
				cancel()
				return ctx.Err()
			}
			return nil
		})

		report, err := env.app.RunCommands(ctx, []string{"a", "b", "c", "d"})
		require.Error(t, err)
		assert.Equal(t, 1, report.Summary.Succeeded)
		assert.GreaterOrEqual(t, report.Summary.Processed, 2)
		assert.EqualError(t, err, fmt.Sprintf("run canceled after %d of 4 commands", report.Summary.Processed))
	})
}

func TestReadCommands(t *testing.T) {
	commands, err := ReadCommands(strings.NewReader(`
# build everything
go build ./...

  go vet ./...
#go test ./...
echo done
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"go build ./...", "go vet ./...", "echo done"}, commands)
}

func TestLoadCommands(t *testing.T) {
	env := newTestApp(t, testConfig(), "from stdin\n", nil)
	require.NoError(t, afero.WriteFile(env.fs, "/jobs.txt", []byte("one\ntwo\n"), 0644))

	commands, err := env.app.LoadCommands("/jobs.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, commands)

	commands, err = env.app.LoadCommands("")
	require.NoError(t, err)
	assert.Equal(t, []string{"from stdin"}, commands)

	_, err = env.app.LoadCommands("/missing.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open command file")
}

func TestShellRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	require.NoError(t, ShellRunner(context.Background(), "exit 0"))

	err := ShellRunner(context.Background(), "echo first; echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Equal(t, "exit status 3: boom", err.Error())
}

func TestLastLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"single", "single"},
		{"a\nb\n", "b"},
		{"a\r\nb\r\n\n", "b"},
		{"  padded  \n", "padded"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, lastLine(tt.in), "input %q", tt.in)
	}
}

func TestDemo(t *testing.T) {
	env := newTestApp(t, testConfig(), "", nil)

	report, err := env.app.Demo(context.Background(), 4, 0)
	require.NoError(t, err)

	out := env.stdout.String()
	assert.True(t, strings.HasPrefix(out, "[                  ]   0% 0/4\r"), "stdout: %q", out)
	assert.True(t, strings.HasSuffix(out, "[==================] 100% 4/4\n"), "stdout: %q", out)
	assert.Equal(t, 4, report.Summary.Succeeded)
	assert.False(t, report.Summary.Canceled)
}

func TestDemoCanceled(t *testing.T) {
	env := newTestApp(t, testConfig(), "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := env.app.Demo(ctx, 4, time.Hour)
	require.NoError(t, err)
	assert.True(t, report.Summary.Canceled)
	assert.Equal(t, "[                  ]   0% 0/4\r\n", env.stdout.String())
}

func TestPlan(t *testing.T) {
	cfg := testConfig()
	cfg.Size = 40
	cfg.NoTimer = false
	cfg.Width = 50

	env := newTestApp(t, cfg, "", nil)

	report, err := env.app.Plan(1_000_000)
	require.NoError(t, err)

	assert.Equal(t, 40, report.Plan.BarWidth)
	assert.True(t, report.Plan.ShowPercentage)
	assert.False(t, report.Plan.ShowCounter)
	assert.False(t, report.Plan.ShowTimer)
	assert.Equal(t, []layout.Field{layout.FieldTimer, layout.FieldCounter}, report.Plan.Dropped)

	t.Run("terminal too small", func(t *testing.T) {
		cfg.Width = 9
		env := newTestApp(t, cfg, "", nil)

		_, err := env.app.Plan(10)
		assert.ErrorIs(t, err, layout.ErrTerminalTooSmall)
	})
}

func TestRender(t *testing.T) {
	cfg := testConfig()
	cfg.Output = "json"
	env := newTestApp(t, cfg, "", nil)

	report, err := env.app.Plan(7)
	require.NoError(t, err)
	require.NoError(t, env.app.Render(report))

	assert.Contains(t, env.stdout.String(), `"command": "plan"`)
	assert.Contains(t, env.stdout.String(), `"total": 7`)
}

func TestHandleSignals(t *testing.T) {
	env := newTestApp(t, testConfig(), "", nil)

	sigChan := make(chan os.Signal, 2)
	go env.app.handleSignals(sigChan, &signalState{})

	sigChan <- syscall.SIGINT
	select {
	case <-env.app.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled by the first signal")
	}
	assert.Contains(t, env.stderr.String(), "Received interrupt, stopping")

	sigChan <- syscall.SIGTERM
	select {
	case code := <-env.exits:
		assert.Equal(t, ExitInterrupted, code)
	case <-time.After(time.Second):
		t.Fatal("second signal did not force exit")
	}
}

func TestShutdown(t *testing.T) {
	env := newTestApp(t, testConfig(), "", nil)
	env.app.HandleSignals()

	require.NoError(t, env.app.Shutdown())
	require.NoError(t, env.app.Shutdown())

	assert.Error(t, env.app.Context().Err())
}

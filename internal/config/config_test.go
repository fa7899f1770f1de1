package config

import (
	"os"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"TERMBAR_SIZE",
	"TERMBAR_NO_PERCENTAGE",
	"TERMBAR_NO_COUNTER",
	"TERMBAR_NO_TIMER",
	"TERMBAR_WIDTH",
	"TERMBAR_DEFAULT_WIDTH",
	"TERMBAR_WORKERS",
	"TERMBAR_RATE_LIMIT",
	"TERMBAR_OUTPUT",
	"TERMBAR_NO_COLOR",
	"TERMBAR_VERBOSE",
}

// clearEnv unsets every TERMBAR_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envVars {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func defaults() Config {
	return Config{
		Size:         DefaultSize,
		DefaultWidth: DefaultWindowWidth,
		Workers:      runtime.NumCPU(),
		Output:       "text",
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func() Config
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "default configuration",
			expected: defaults,
		},
		{
			name: "configuration from environment variables",
			envVars: map[string]string{
				"TERMBAR_SIZE":          "30",
				"TERMBAR_NO_PERCENTAGE": "true",
				"TERMBAR_NO_COUNTER":    "1",
				"TERMBAR_NO_TIMER":      "true",
				"TERMBAR_WIDTH":         "100",
				"TERMBAR_DEFAULT_WIDTH": "120",
				"TERMBAR_WORKERS":       "1",
				"TERMBAR_RATE_LIMIT":    "5",
				"TERMBAR_OUTPUT":        "json",
				"TERMBAR_NO_COLOR":      "true",
				"TERMBAR_VERBOSE":       "vv",
			},
			expected: func() Config {
				return Config{
					Size:         30,
					NoPercentage: true,
					NoCounter:    true,
					NoTimer:      true,
					Width:        100,
					DefaultWidth: 120,
					Workers:      1,
					RateLimit:    5,
					Output:       "json",
					NoColor:      true,
					Verbose:      2,
				}
			},
		},
		{
			name: "numeric verbosity",
			envVars: map[string]string{
				"TERMBAR_VERBOSE": "1",
			},
			expected: func() Config {
				c := defaults()
				c.Verbose = 1
				return c
			},
		},
		{
			name: "workers zero means CPU count",
			envVars: map[string]string{
				"TERMBAR_WORKERS": "0",
			},
			expected: defaults,
		},
		{
			name: "bar too small",
			envVars: map[string]string{
				"TERMBAR_SIZE": "5",
			},
			wantErr: true,
			errMsg:  "bar size must be at least 10",
		},
		{
			name: "invalid output format",
			envVars: map[string]string{
				"TERMBAR_OUTPUT": "xml",
			},
			wantErr: true,
			errMsg:  "invalid output format: must be one of [text json yaml]",
		},
		{
			name: "negative rate limit",
			envVars: map[string]string{
				"TERMBAR_RATE_LIMIT": "-1",
			},
			wantErr: true,
			errMsg:  "rate limit must be non-negative",
		},
		{
			name: "maximum workers limit",
			envVars: map[string]string{
				"TERMBAR_WORKERS": "1000000",
			},
			wantErr: true,
			errMsg:  "workers count cannot exceed system CPU count * 4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected(), cfg)
		})
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/termbar.yaml", []byte(`
size: 60
no_timer: true
width: 132
output: yaml
`), 0644))

	cfg, err := LoadFile(fs, "/etc/termbar.yaml")
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Size)
	assert.True(t, cfg.NoTimer)
	assert.False(t, cfg.NoCounter)
	assert.Equal(t, 132, cfg.Width)
	assert.Equal(t, "yaml", cfg.Output)

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("TERMBAR_SIZE", "20")

		cfg, err := LoadFile(fs, "/etc/termbar.yaml")
		require.NoError(t, err)
		assert.Equal(t, 20, cfg.Size)
		assert.Equal(t, 132, cfg.Width)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(fs, "/etc/missing.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file /etc/missing.yaml")
	})

	t.Run("invalid values in file", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "/tmp/bad.yaml", []byte("size: 3\n"), 0644))

		_, err := LoadFile(fs, "/tmp/bad.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bar size must be at least 10")
	})
}

func TestValidateConfig(t *testing.T) {
	maxWorkers := runtime.NumCPU() * MaxWorkerMultiplier

	valid := func() Config {
		return Config{Size: 40, DefaultWidth: 80, Workers: 1, Output: "json"}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{name: "valid configuration", mutate: func(c *Config) {}},
		{
			name:    "negative width",
			mutate:  func(c *Config) { c.Width = -1 },
			wantErr: true,
			errMsg:  "width must be 0 (auto-detect) or positive",
		},
		{
			name:    "zero default width",
			mutate:  func(c *Config) { c.DefaultWidth = 0 },
			wantErr: true,
			errMsg:  "default width must be positive",
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Workers = -1 },
			wantErr: true,
			errMsg:  "workers count must be positive",
		},
		{
			name:    "too many workers",
			mutate:  func(c *Config) { c.Workers = maxWorkers + 1 },
			wantErr: true,
			errMsg:  "workers count cannot exceed system CPU count * 4",
		},
		{
			name:    "several problems reported together",
			mutate:  func(c *Config) { c.Size = 1; c.RateLimit = -3 },
			wantErr: true,
			errMsg:  "bar size must be at least 10\nrate limit must be non-negative",
		},
		{
			name:   "high verbosity is allowed",
			mutate: func(c *Config) { c.Verbose = 4 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProgressConfig(t *testing.T) {
	cfg := Config{Size: 25, NoTimer: true, Width: 90, DefaultWidth: 70}

	pc := cfg.ProgressConfig(12)

	assert.Equal(t, 12, pc.Total)
	assert.Equal(t, 25, pc.Size)
	assert.True(t, pc.NoTimer)
	assert.False(t, pc.NoCounter)
	assert.Equal(t, 70, pc.DefaultWidth)

	w, err := pc.Width.Width()
	require.NoError(t, err)
	assert.Equal(t, 90, w)

	assert.NotNil(t, Config{}.WidthProvider())
}

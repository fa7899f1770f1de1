package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/sonemaro/termbar/pkg/progress"
	"github.com/sonemaro/termbar/pkg/terminal"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application
type Config struct {
	// Size is the requested progress bar size in columns
	Size int `mapstructure:"size"`

	// NoPercentage hides the percentage field
	NoPercentage bool `mapstructure:"no_percentage"`

	// NoCounter hides the current/total field
	NoCounter bool `mapstructure:"no_counter"`

	// NoTimer hides the remaining time field
	NoTimer bool `mapstructure:"no_timer"`

	// Width forces the terminal width (0 for auto-detect)
	Width int `mapstructure:"width"`

	// DefaultWidth is used when the width cannot be detected
	DefaultWidth int `mapstructure:"default_width"`

	// Workers is the number of concurrent workers for the run command
	Workers int `mapstructure:"workers"`

	// RateLimit is the maximum number of jobs started per second (0 for unlimited)
	RateLimit int `mapstructure:"rate_limit"`

	// Output specifies the report format (text, json or yaml)
	Output string `mapstructure:"output"`

	// NoColor disables colored output
	NoColor bool `mapstructure:"no_color"`

	// Verbose sets the verbosity level
	Verbose int `mapstructure:"verbose"`
}

// validOutputFormats contains the list of supported output formats
var validOutputFormats = map[string]bool{
	string(OutputFormatText): true,
	string(OutputFormatJSON): true,
	string(OutputFormatYAML): true,
}

// Load reads configuration from environment variables and validates it
func Load() (Config, error) {
	return LoadFile(afero.NewOsFs(), "")
}

// LoadFile reads the YAML file at path from fs, then applies environment
// variables on top. An empty path skips the file.
func LoadFile(fs afero.Fs, path string) (Config, error) {
	v := newViper()
	v.SetFs(fs)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// Process verbosity level from string of 'v's
	if verboseStr := v.GetString("verbose"); verboseStr != "" && strings.Trim(verboseStr, "v") == "" {
		v.Set("verbose", strings.Count(verboseStr, "v"))
	}

	cfg := Config{
		Size:         v.GetInt("size"),
		NoPercentage: v.GetBool("no_percentage"),
		NoCounter:    v.GetBool("no_counter"),
		NoTimer:      v.GetBool("no_timer"),
		Width:        v.GetInt("width"),
		DefaultWidth: v.GetInt("default_width"),
		Workers:      v.GetInt("workers"),
		RateLimit:    v.GetInt("rate_limit"),
		Output:       v.GetString("output"),
		NoColor:      v.GetBool("no_color"),
		Verbose:      v.GetInt("verbose"),
	}

	// Handle special case for workers=0
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("size", DefaultSize)
	v.SetDefault("no_percentage", false)
	v.SetDefault("no_counter", false)
	v.SetDefault("no_timer", false)
	v.SetDefault("width", 0)
	v.SetDefault("default_width", DefaultWindowWidth)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("rate_limit", 0)
	v.SetDefault("output", string(OutputFormatText))
	v.SetDefault("no_color", false)
	v.SetDefault("verbose", 0)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for _, key := range []string{
		"size", "no_percentage", "no_counter", "no_timer", "width",
		"default_width", "workers", "rate_limit", "output", "no_color", "verbose",
	} {
		_ = v.BindEnv(key)
	}

	return v
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	var errs []error

	if c.Size < MinSize {
		errs = append(errs, fmt.Errorf("bar size must be at least %d", MinSize))
	}

	if c.Width < 0 {
		errs = append(errs, fmt.Errorf("width must be 0 (auto-detect) or positive"))
	}

	if c.DefaultWidth <= 0 {
		errs = append(errs, fmt.Errorf("default width must be positive"))
	}

	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers count must be positive"))
	}
	if c.Workers > runtime.NumCPU()*MaxWorkerMultiplier {
		errs = append(errs, fmt.Errorf("workers count cannot exceed system CPU count * %d", MaxWorkerMultiplier))
	}

	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit must be non-negative"))
	}

	if !validOutputFormats[c.Output] {
		errs = append(errs, fmt.Errorf("invalid output format: must be one of [text json yaml]"))
	}

	return errors.Join(errs...)
}

// WidthProvider returns the forced width when set, else auto-detection.
func (c Config) WidthProvider() terminal.WidthProvider {
	if c.Width > 0 {
		return terminal.Static(c.Width)
	}
	return terminal.Default()
}

// ProgressConfig converts the bar related settings for total operations.
func (c Config) ProgressConfig(total int) progress.Config {
	return progress.Config{
		Total:        total,
		Size:         c.Size,
		NoPercentage: c.NoPercentage,
		NoCounter:    c.NoCounter,
		NoTimer:      c.NoTimer,
		Width:        c.WidthProvider(),
		DefaultWidth: c.DefaultWidth,
	}
}

// String returns a string representation of the configuration
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Size: %d, NoPercentage: %v, NoCounter: %v, NoTimer: %v, "+
			"Width: %d, DefaultWidth: %d, Workers: %d, RateLimit: %d, "+
			"Output: %s, NoColor: %v, Verbose: %d}",
		c.Size, c.NoPercentage, c.NoCounter, c.NoTimer,
		c.Width, c.DefaultWidth, c.Workers, c.RateLimit,
		c.Output, c.NoColor, c.Verbose,
	)
}

/*
Package commands implements the termbar command line. The root command
loads the configuration (file, TERMBAR_ environment variables, then flags)
and every subcommand drives one progress bar through the app package.
*/
package commands

import (
	"fmt"
	"runtime"

	"github.com/sonemaro/termbar/cmd/termbar/app"
	"github.com/sonemaro/termbar/internal/config"
	"github.com/sonemaro/termbar/internal/version"
	"github.com/sonemaro/termbar/pkg/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Options holds command-line options that apply to all commands
type Options struct {
	Config     *config.Config
	ConfigPath string
	Verbosity  int
	NoColor    bool
	Output     string

	// Bar layout flags
	Size         int
	Width        int
	NoPercentage bool
	NoCounter    bool
	NoTimer      bool

	// Fs resolves --config, --file and --out paths
	Fs afero.Fs

	// Runner replaces the shell for the run command
	Runner app.CommandRunner
}

// NewRootCommand creates the root command for the application
func NewRootCommand() *cobra.Command {
	return newRootCommand(&Options{Fs: afero.NewOsFs()})
}

func newRootCommand(opts *Options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "termbar [command] [flags]",
		Short: "Single-line terminal progress bars",
		Long: `termbar v` + version.Version + `
========================================

termbar draws a single-line progress bar that fits the terminal: optional
percentage, counter and remaining time fields are dropped, widest first,
when the window is too narrow for them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeCommand(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.Verbosity, "verbose", "v", "verbose output (can be used multiple times)")
	flags.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	flags.StringVar(&opts.ConfigPath, "config", "", "YAML configuration file")
	flags.StringVarP(&opts.Output, "output", "o", string(config.OutputFormatText), "report format: text|json|yaml")

	flags.IntVarP(&opts.Size, "size", "s", config.DefaultSize, "progress bar size in columns, brackets included")
	flags.IntVar(&opts.Width, "width", 0, "terminal width (0 to auto-detect)")
	flags.BoolVar(&opts.NoPercentage, "no-percentage", false, "hide the percentage field")
	flags.BoolVar(&opts.NoCounter, "no-counter", false, "hide the current/total field")
	flags.BoolVar(&opts.NoTimer, "no-timer", false, "hide the remaining time field")

	rootCmd.AddCommand(
		newLinesCommand(opts),
		newRunCommand(opts),
		newDemoCommand(opts),
		newPlanCommand(opts),
		newVersionCommand(opts),
	)

	return rootCmd
}

// initializeCommand performs common initialization for all commands
func initializeCommand(cmd *cobra.Command, opts *Options) error {
	log := logger.NewLogger(logger.Config{
		Verbosity: opts.Verbosity,
		Output:    cmd.ErrOrStderr(),
	})

	log.WithFields(logger.Fields{
		"verbosity": opts.Verbosity,
		"command":   cmd.Name(),
		"config":    opts.ConfigPath,
	}).Debug("Initializing command")

	cfg, err := config.LoadFile(opts.Fs, opts.ConfigPath)
	if err != nil {
		log.WithFields(logger.Fields{
			"error": err,
		}).Error("Failed to load configuration")
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flags win over the file and the environment, but only when given
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = opts.Verbosity
	}
	if flags.Changed("no-color") {
		cfg.NoColor = opts.NoColor
	}
	if flags.Changed("output") {
		cfg.Output = opts.Output
	}
	if flags.Changed("size") {
		cfg.Size = opts.Size
	}
	if flags.Changed("width") {
		cfg.Width = opts.Width
	}
	if flags.Changed("no-percentage") {
		cfg.NoPercentage = opts.NoPercentage
	}
	if flags.Changed("no-counter") {
		cfg.NoCounter = opts.NoCounter
	}
	if flags.Changed("no-timer") {
		cfg.NoTimer = opts.NoTimer
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.WithFields(logger.Fields{
		"config": cfg.String(),
	}).Debug("Configuration loaded")

	opts.Config = &cfg
	return nil
}

// newApp builds the application on the command's streams.
func newApp(cmd *cobra.Command, opts *Options) *app.App {
	return app.New(opts.Config, app.Options{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
		Fs:     opts.Fs,
		Runner: opts.Runner,
	})
}

// workerFlags applies --workers and --rate-limit on top of the configuration.
func workerFlags(cmd *cobra.Command, cfg *config.Config, workers, rateLimit int) error {
	if cmd.Flags().Changed("workers") {
		if workers == 0 {
			workers = runtime.NumCPU()
		}
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("rate-limit") {
		cfg.RateLimit = rateLimit
	}
	return cfg.Validate()
}

package config

// OutputFormat represents the supported report formats
type OutputFormat string

const (
	// OutputFormatText is the human readable report
	OutputFormatText OutputFormat = "text"

	// OutputFormatJSON represents the JSON report format
	OutputFormatJSON OutputFormat = "json"

	// OutputFormatYAML represents the YAML report format
	OutputFormatYAML OutputFormat = "yaml"
)

// Constants for configuration limits and defaults
const (
	// EnvPrefix prefixes every environment variable
	EnvPrefix = "TERMBAR"

	// DefaultSize is the default bar size in columns
	DefaultSize = 40

	// MinSize is the smallest accepted bar size
	MinSize = 10

	// DefaultWindowWidth is used when the terminal width is unknown
	DefaultWindowWidth = 80

	// MaxWorkerMultiplier is the maximum multiple of CPU cores for worker count
	MaxWorkerMultiplier = 4
)

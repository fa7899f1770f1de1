// Package config provides configuration management for the termbar command.
// It handles environment variables, an optional YAML file and validation of
// all configuration parameters.
//
// # Configuration Loading
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// With a file, read through any afero filesystem:
//
//	cfg, err := config.LoadFile(afero.NewOsFs(), "/etc/termbar.yaml")
//
// Environment variables always win over the file.
//
// # Environment Variables
//
//	TERMBAR_SIZE           Progress bar size in columns (default: 40)
//	TERMBAR_NO_PERCENTAGE  Hide the percentage field (true/false)
//	TERMBAR_NO_COUNTER     Hide the current/total field (true/false)
//	TERMBAR_NO_TIMER       Hide the remaining time field (true/false)
//	TERMBAR_WIDTH          Force the terminal width (0 for auto-detect)
//	TERMBAR_DEFAULT_WIDTH  Width used when detection fails (default: 80)
//	TERMBAR_WORKERS        Concurrent jobs for `termbar run` (default: CPU cores)
//	TERMBAR_RATE_LIMIT     Jobs started per second (0 for unlimited)
//	TERMBAR_OUTPUT         Report format: text|json|yaml
//	TERMBAR_NO_COLOR       Disable colored output (true/false)
//	TERMBAR_VERBOSE        Verbosity level (number of 'v's or a number)
//
// # Configuration File
//
// The file uses the same keys in lower case without the prefix:
//
//	size: 60
//	no_timer: true
//	workers: 8
//
// # Configuration Validation
//
//   - Size must be at least 10
//   - Width must be 0 or positive, DefaultWidth positive
//   - Workers must be positive and not exceed CPU cores * 4
//   - RateLimit must be non-negative
//   - Output must be one of: text, json, yaml
//
// Every failed rule is reported, joined with newlines.
//
// The configuration is immutable after loading and is safe for concurrent
// access across goroutines.
package config

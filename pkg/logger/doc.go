/*
Package logger wraps uber-go/zap behind a small interface with three
verbosity levels.

Basic Usage:

	log := logger.NewLogger(logger.Config{
	    Verbosity: 0, // Info and above
	})

	log.Info("Batch started")
	log.Debug("Plan computed")     // verbosity >= 1
	log.Trace("Rendered update")   // verbosity >= 2

Verbosity Levels:

	0: Info, Warn, Error (default)
	1: Debug + Level 0
	2: Trace + Level 1

Structured Logging:

	log.WithFields(logger.Fields{
	    "total":    120,
	    "barWidth": 40,
	}).Debug("Layout planned")

JSON is the default encoding:

	{"level":"debug","ts":"2026-01-20T15:04:05.000Z","message":"Layout planned","total":120,"barWidth":40}

Set Encoding to EncodingConsole for tab separated lines when a person reads
the log next to the bar.

Library code that must stay silent should use NewNop.

The logger is safe for concurrent use by multiple goroutines.
*/
package logger

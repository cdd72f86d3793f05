// Package logging provides structured logging for parawalk runs.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation. A run writes either to {logDir}/debug.log or to
// stderr; standard output is reserved for the computed total.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers
// created via With* methods share the underlying writer safely, so each
// worker goroutine can hold its own child logger.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/path/to/logs", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	runLogger := logger.WithRun("4f1c...")
//	runLogger.WithWorker(2).Debug("worker exited", "executed", 17)
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"worker exited","run_id":"4f1c...","worker":2,"executed":17}
//
// # Testing
//
// For testing, use [NopLogger] to discard all log output.
package logging

// Package logger provides the structured logging interface used across freegrab.
//
// It wraps zerolog behind a small Logger interface so components can take a
// logger as a dependency and tests can swap in TestLogger or NewNopLogger.
//
// Basic usage:
//
//	log, err := logger.Initialize(&cfg.Logging, os.Stderr)
//	log.WithField("run_id", runID).Info("run started")
//
//	exec := logger.GetLogger().WithField("component", "executor")
//	exec.WarnWithFields("rate limited", map[string]interface{}{
//	    "product_id": 42,
//	    "cooldown":   65 * time.Second,
//	})
//
// Console output goes to stderr so it never interleaves with the status lines
// printed on stdout. When LoggingConfig.File is set, JSON lines are appended
// to that file as well.
package logger

// Package logger provides a simple, thread-safe logging facility.
//
// The logger supports four levels: Debug, Info, Warn, and Error.
// Each log entry includes a timestamp, level, optional component tag, and message.
//
// # Basic Usage
//
// Using the default logger:
//
//	logger.Info("", "Server listening on %s", addr)
//	logger.Info("conn-12", "GET /ok")
//	logger.Error("conn-12", "write failed: %v", err)
//
// Creating a custom logger:
//
//	l := logger.New(os.Stderr, logger.LevelDebug)
//	l.SetColor(true)
//	l.Debug("pool", "worker 3 picked a job")
//
// # Log Levels
//
// Messages below the configured level are filtered:
//   - LevelDebug: all messages
//   - LevelInfo: Info, Warn, Error
//   - LevelWarn: Warn, Error
//   - LevelError: Error only
//
// ParseLevel converts the names used in configuration files ("debug", "info",
// "warn", "error") into a Level.
//
// # Thread Safety
//
// All logging operations are protected by a mutex and safe for concurrent use.
package logger

// Package logger provides structured logging for coreapi using zerolog.
//
// Loggers are plain values passed to the packages that need them; there is
// no process-wide logger. Use NewNop in tests and wherever logging is not wanted.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(cfg.Logging, "coreapi").WithComponent("repository")
//	log.Debug("request completed", logger.Fields("path", "/users", "status", 200))
package logger

// Package logger provides structured logging for honeymesh.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, handler construction, dynamic level
//   - context.go: context propagation of loggers and request IDs
//   - redact.go: redaction of credentials before they reach any sink
//
// Captured bait passwords and store credentials never appear in logs;
// honeytoken ids are logged in clear so operators can correlate alerts.
package logger

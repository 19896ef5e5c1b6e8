// Package logging provides structured logging utilities for the taskchat application.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (user identifier anonymization)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "tasks.list")
//	logger.Info("listing tasks",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("user operation",
//	    logging.UserHash(userID))
//
// # Security Considerations
//
// This package is designed with security in mind:
//   - User identifiers are hashed to prevent PII leakage while allowing correlation
//   - Tokens are never logged directly
package logging

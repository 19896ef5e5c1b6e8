package instrumentation

import (
	"crypto/sha256"
	"encoding/hex"
)

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Always use these helpers when recording metrics with user identifiers.

// AnonymizeUserID returns a short, stable hash of a user identifier.
// This allows correlating metric/log entries for the same user without
// exposing the raw identifier (which may be an email address).
//
// Example:
//
//	AnonymizeUserID("jane@example.com")  // "user:3f1a..."
//	AnonymizeUserID("")                  // "unknown"
func AnonymizeUserID(userID string) string {
	if userID == "" {
		return "unknown"
	}

	hash := sha256.Sum256([]byte(userID))
	return "user:" + hex.EncodeToString(hash[:8])
}

// Common operation types for store metrics.
// Status and Service constants are defined in config.go.
const (
	OperationList     = "list"
	OperationGet      = "get"
	OperationCreate   = "create"
	OperationUpdate   = "update"
	OperationDelete   = "delete"
	OperationComplete = "complete"
)

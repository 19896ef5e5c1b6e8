package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	// Common attributes (reused across metrics)
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrUser      = "user"
	attrIntent    = "intent"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeConversations metric.Int64UpDownCounter

	// Store metrics (database operations)
	storeOperationsTotal   metric.Int64Counter
	storeOperationDuration metric.Float64Histogram

	// Auth metrics
	authAttemptsTotal     metric.Int64Counter
	authTokenRefreshTotal metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// Chat agent metrics
	chatIntentsTotal metric.Int64Counter

	// Configuration
	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// HTTP Metrics
	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.activeConversations, err = meter.Int64UpDownCounter(
		"active_conversations",
		metric.WithDescription("Number of active chat conversations"),
		metric.WithUnit("{conversation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_conversations gauge: %w", err)
	}

	// Store Metrics
	m.storeOperationsTotal, err = meter.Int64Counter(
		"store_operations_total",
		metric.WithDescription("Total number of database store operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create store_operations_total counter: %w", err)
	}

	m.storeOperationDuration, err = meter.Float64Histogram(
		"store_operation_duration_seconds",
		metric.WithDescription("Database store operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create store_operation_duration_seconds histogram: %w", err)
	}

	// Auth Metrics
	m.authAttemptsTotal, err = meter.Int64Counter(
		"auth_attempts_total",
		metric.WithDescription("Total number of authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth_attempts_total counter: %w", err)
	}

	m.authTokenRefreshTotal, err = meter.Int64Counter(
		"auth_token_refresh_total",
		metric.WithDescription("Total number of token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth_token_refresh_total counter: %w", err)
	}

	// MCP Tool Metrics
	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	// Chat Agent Metrics
	m.chatIntentsTotal, err = meter.Int64Counter(
		"chat_intents_total",
		metric.WithDescription("Total number of chat intents detected"),
		metric.WithUnit("{intent}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_intents_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordStoreOperation records a database store operation with service, operation,
// status, and duration.
//
// Parameters:
//   - service: Store name (tasks, users, chat)
//   - operation: Operation type (create, list, get, update, delete, complete)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordStoreOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.storeOperationsTotal == nil || m.storeOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.storeOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.storeOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAuthAttempt records an authentication attempt with result.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordAuthAttempt(ctx context.Context, result string) {
	if m.authAttemptsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.authAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTokenRefresh records a token refresh attempt with result.
// Result should be one of: "success", "failure", "expired"
func (m *Metrics) RecordTokenRefresh(ctx context.Context, result string) {
	if m.authTokenRefreshTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.authTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
//
// Parameters:
//   - toolName: Name of the MCP tool (e.g., "add_task", "list_tasks")
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the tool execution
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocationWithUser records an MCP tool invocation with user info.
// This is the detailed version that includes the anonymized user identifier
// when detailedLabels is enabled.
func (m *Metrics) RecordToolInvocationWithUser(ctx context.Context, toolName, status, userHash string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && userHash != "" {
		attrs = append(attrs, attribute.String(attrUser, userHash))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordChatIntent records a detected chat intent.
func (m *Metrics) RecordChatIntent(ctx context.Context, intent string) {
	if m.chatIntentsTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrIntent, intent),
	}

	m.chatIntentsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// IncrementActiveConversations increments the active conversations counter.
func (m *Metrics) IncrementActiveConversations(ctx context.Context) {
	if m.activeConversations == nil {
		return // Instrumentation not initialized
	}

	m.activeConversations.Add(ctx, 1)
}

// DecrementActiveConversations decrements the active conversations counter.
func (m *Metrics) DecrementActiveConversations(ctx context.Context) {
	if m.activeConversations == nil {
		return // Instrumentation not initialized
	}

	m.activeConversations.Add(ctx, -1)
}

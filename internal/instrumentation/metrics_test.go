package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ctx context.Context) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	return provider
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordHTTPRequest(ctx, "GET", "/api/tasks", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "POST", "/mcp", 500, 50*time.Millisecond)
}

func TestMetrics_RecordStoreOperation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordStoreOperation(ctx, ServiceTasks, OperationCreate, StatusSuccess, 10*time.Millisecond)
	metrics.RecordStoreOperation(ctx, ServiceTasks, OperationList, StatusError, 5*time.Millisecond)
	metrics.RecordStoreOperation(ctx, ServiceUsers, OperationGet, StatusSuccess, 3*time.Millisecond)
	metrics.RecordStoreOperation(ctx, ServiceChat, OperationCreate, StatusSuccess, 8*time.Millisecond)
}

func TestMetrics_RecordAuthAttempt(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.RecordAuthAttempt(ctx, AuthResultSuccess)
	metrics.RecordAuthAttempt(ctx, AuthResultFailure)
	metrics.RecordTokenRefresh(ctx, AuthResultSuccess)
	metrics.RecordTokenRefresh(ctx, AuthResultExpired)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.RecordToolInvocation(ctx, "add_task", StatusSuccess, 250*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "list_tasks", StatusSuccess, 120*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "complete_task", StatusError, 80*time.Millisecond)
}

func TestMetrics_RecordToolInvocationWithUser(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
		DetailedLabels:  true,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	metrics := provider.Metrics()

	// With detailed labels enabled, the user hash is attached
	metrics.RecordToolInvocationWithUser(ctx, "add_task", StatusSuccess, AnonymizeUserID("alice"), 100*time.Millisecond)
	// Empty hash is skipped
	metrics.RecordToolInvocationWithUser(ctx, "list_tasks", StatusSuccess, "", 50*time.Millisecond)
}

func TestMetrics_RecordChatIntent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.RecordChatIntent(ctx, "add_task")
	metrics.RecordChatIntent(ctx, "unknown")
}

func TestMetrics_ActiveConversations(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	metrics.IncrementActiveConversations(ctx)
	metrics.IncrementActiveConversations(ctx)
	metrics.DecrementActiveConversations(ctx)
}

func TestMetrics_NoOpWhenUninitialized(t *testing.T) {
	ctx := context.Background()

	// Zero-value Metrics must not panic
	m := &Metrics{}

	m.RecordHTTPRequest(ctx, "GET", "/api/tasks", 200, time.Millisecond)
	m.RecordStoreOperation(ctx, ServiceTasks, OperationList, StatusSuccess, time.Millisecond)
	m.RecordAuthAttempt(ctx, AuthResultSuccess)
	m.RecordTokenRefresh(ctx, AuthResultSuccess)
	m.RecordToolInvocation(ctx, "add_task", StatusSuccess, time.Millisecond)
	m.RecordToolInvocationWithUser(ctx, "add_task", StatusSuccess, "user:abc", time.Millisecond)
	m.RecordChatIntent(ctx, "add_task")
	m.IncrementActiveConversations(ctx)
	m.DecrementActiveConversations(ctx)
}

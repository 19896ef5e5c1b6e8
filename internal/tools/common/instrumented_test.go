package common

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/taskchat/taskchat/internal/instrumentation"
)

type stubInstrumentation struct {
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
}

func (s *stubInstrumentation) Metrics() *instrumentation.Metrics    { return s.metrics }
func (s *stubInstrumentation) Audit() *instrumentation.AuditLogger { return s.audit }

func newStubInstrumentation(t *testing.T) *stubInstrumentation {
	t.Helper()
	meter := noop.NewMeterProvider().Meter("test")
	metrics, err := instrumentation.NewMetrics(meter, false)
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return &stubInstrumentation{
		metrics: metrics,
		audit:   instrumentation.NewAuditLogger(nil),
	}
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	ctx := context.Background()
	sc := newStubInstrumentation(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := InstrumentedToolHandler("test_tool", sc, handler)
	result, err := wrapped(ctx, mcp.CallToolRequest{})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	ctx := context.Background()
	sc := newStubInstrumentation(t)

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	wrapped := InstrumentedToolHandler("test_tool", sc, handler)
	_, err := wrapped(ctx, mcp.CallToolRequest{})

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestInstrumentedToolHandler_ErrorResult(t *testing.T) {
	ctx := context.Background()
	sc := newStubInstrumentation(t)

	// Tool-level failures come back as an error result, not a Go error
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("error message"), nil
	}

	wrapped := InstrumentedToolHandler("test_tool", sc, handler)
	result, err := wrapped(ctx, mcp.CallToolRequest{})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected an error result")
	}
}

func TestInstrumentedToolHandler_NoInstrumentation(t *testing.T) {
	ctx := context.Background()
	sc := &stubInstrumentation{}

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("ok"), nil
	}

	wrapped := InstrumentedToolHandler("test_tool", sc, handler)
	if _, err := wrapped(ctx, mcp.CallToolRequest{}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called without instrumentation")
	}
}

// Package instrumentation provides OpenTelemetry-based observability for taskchat.
//
// It covers three concerns:
//
//   - Metrics: counters and histograms for HTTP requests, MCP tool
//     invocations, database store operations, authentication attempts,
//     and chat intent detection. Exported via Prometheus (default),
//     OTLP, or stdout.
//
//   - Tracing: spans for tool invocations and store operations with
//     consistent attribute naming. Exported via OTLP or stdout, with
//     parent-based sampling.
//
//   - Audit logging: structured slog records for every tool invocation,
//     with cardinality-controlled (hashed) user identifiers by default
//     and optional raw identifiers for compliance streams.
//
// Configuration is read from environment variables (see DefaultConfig).
// Instrumentation can be disabled entirely with INSTRUMENTATION_ENABLED=false,
// in which case all recorders become no-ops.
//
// Usage:
//
//	config := instrumentation.DefaultConfig()
//	provider, err := instrumentation.NewProvider(ctx, config)
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	metrics := provider.Metrics()
//	metrics.RecordToolInvocation(ctx, "add_task", instrumentation.StatusSuccess, duration)
package instrumentation

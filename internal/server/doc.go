// Package server wires the application together: the database pool,
// the task, auth and chat services, and the HTTP sidecars.
//
// # Key Components
//
// ServerContext owns the service graph and its lifecycle. Both the MCP
// tool server and the REST API are built on one ServerContext; Shutdown
// cancels the lifecycle context and closes the database pool.
//
// HealthChecker serves Kubernetes-style probes:
//   - /healthz: liveness, process-only
//   - /readyz: readiness, includes a bounded database ping
//   - /healthz/detailed: uptime and overall status
//
// MetricsServer exposes Prometheus metrics on a dedicated port so
// operational data stays off the application listener.
package server

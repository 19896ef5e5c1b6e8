// Package common provides shared utilities for MCP tool
// implementations: argument readers, due date parsing, and the
// instrumentation wrapper applied to every registered tool handler.
package common

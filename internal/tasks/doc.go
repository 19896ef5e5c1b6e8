// Package tasks implements the task domain: the data model, the
// PostgreSQL-backed store, and the service layer that produces the
// uniform response envelope consumed by both the MCP tools and the
// REST API.
//
// Every operation is scoped to a user identifier. User isolation is
// structural: the user id appears in the WHERE clause of every query,
// so a task belonging to another user is indistinguishable from a task
// that does not exist. Deletion is a soft delete (deleted_at tombstone);
// soft-deleted tasks are invisible to every operation.
package tasks

// Package tasks_tools registers the task management tools (add_task,
// list_tasks, complete_task, delete_task, update_task) with the MCP
// server. Every tool returns the uniform response envelope
// {success, data, message, error} as JSON text.
package tasks_tools

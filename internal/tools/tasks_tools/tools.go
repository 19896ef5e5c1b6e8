package tasks_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/taskchat/taskchat/internal/tasks"
	"github.com/taskchat/taskchat/internal/tools/common"
)

// ServerContext is the slice of the server context the task tools
// need. *server.ServerContext satisfies it.
type ServerContext interface {
	common.Instrumentation
	Tasks() *tasks.Service
	ReadOnly() bool
}

// envelopeResult marshals the response envelope into the tool result.
// Failed envelopes are flagged as error results so clients and the
// instrumentation wrapper can tell them apart without parsing.
func envelopeResult(resp *tasks.Response) *mcp.CallToolResult {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err))
	}
	result := mcp.NewToolResultText(string(data))
	result.IsError = !resp.Success
	return result
}

func validationError(message string) *mcp.CallToolResult {
	return envelopeResult(tasks.Fail(tasks.ErrCodeValidation, message))
}

// RegisterTaskTools registers the task management tools with the MCP
// server. In read-only mode only list_tasks is available.
func RegisterTaskTools(s *mcpserver.MCPServer, sc ServerContext) error {
	registerListTasks(s, sc)

	if sc.ReadOnly() {
		return nil
	}

	registerAddTask(s, sc)
	registerCompleteTask(s, sc)
	registerDeleteTask(s, sc)
	registerUpdateTask(s, sc)
	return nil
}

func registerAddTask(s *mcpserver.MCPServer, sc ServerContext) {
	addTaskTool := mcp.NewTool("add_task",
		mcp.WithDescription("Create a new task for a user. Supports priority, category, due date and recurrence."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The user who owns the task"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Task title (1-200 characters)"),
		),
		mcp.WithString("description",
			mcp.Description("Optional longer description"),
		),
		mcp.WithString("priority",
			mcp.Description("Priority: 'high', 'medium' or 'low' (default: 'medium')"),
		),
		mcp.WithString("category",
			mcp.Description("Free-form category label"),
		),
		mcp.WithString("due_date",
			mcp.Description("Due date in ISO format (e.g., 2025-01-15T10:00:00Z)"),
		),
		mcp.WithBoolean("is_recurring",
			mcp.Description("Whether the task repeats (default: false)"),
		),
		mcp.WithString("recurrence_pattern",
			mcp.Description("Recurrence pattern: 'daily', 'weekly' or 'monthly'. Required when is_recurring is true."),
		),
		mcp.WithNumber("recurrence_interval",
			mcp.Description("Repeat every N pattern units (default: 1)"),
		),
		mcp.WithString("recurrence_end_date",
			mcp.Description("Stop recurring after this date (ISO format)"),
		),
	)

	s.AddTool(addTaskTool, common.InstrumentedToolHandler("add_task", sc, addTaskHandler(sc)))
}

func addTaskHandler(sc ServerContext) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		dueDate, err := common.ParseDueDate(args, "due_date")
		if err != nil {
			return validationError(err.Error()), nil
		}
		endDate, err := common.ParseDueDate(args, "recurrence_end_date")
		if err != nil {
			return validationError(err.Error()), nil
		}

		interval, _ := common.GetInt(args, "recurrence_interval")

		resp := sc.Tasks().AddTask(ctx, tasks.AddTaskInput{
			UserID:             common.GetUserID(args),
			Title:              common.GetString(args, "title"),
			Description:        common.GetString(args, "description"),
			Priority:           common.GetString(args, "priority"),
			Category:           common.GetString(args, "category"),
			DueDate:            dueDate,
			IsRecurring:        common.GetBool(args, "is_recurring"),
			RecurrencePattern:  common.GetString(args, "recurrence_pattern"),
			RecurrenceInterval: int(interval),
			RecurrenceEndDate:  endDate,
		})
		return envelopeResult(resp), nil
	}
}

func registerListTasks(s *mcpserver.MCPServer, sc ServerContext) {
	listTasksTool := mcp.NewTool("list_tasks",
		mcp.WithDescription("List a user's tasks with optional filters and sorting"),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The user whose tasks to list"),
		),
		mcp.WithString("status",
			mcp.Description("Filter by status: 'all', 'pending' or 'completed' (default: 'all')"),
		),
		mcp.WithString("priority",
			mcp.Description("Filter by priority: 'high', 'medium' or 'low'"),
		),
		mcp.WithString("category",
			mcp.Description("Filter by exact category"),
		),
		mcp.WithString("search",
			mcp.Description("Case-insensitive substring match on title and description"),
		),
		mcp.WithString("sort_by",
			mcp.Description("Sort key: 'created_at', 'due_date', 'priority' or 'title' (default: 'created_at')"),
		),
		mcp.WithString("sort_order",
			mcp.Description("Sort direction: 'asc' or 'desc' (default: 'asc')"),
		),
	)

	s.AddTool(listTasksTool, common.InstrumentedToolHandler("list_tasks", sc, listTasksHandler(sc)))
}

func listTasksHandler(sc ServerContext) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		resp := sc.Tasks().ListTasks(ctx, tasks.ListTasksInput{
			UserID:    common.GetUserID(args),
			Status:    common.GetString(args, "status"),
			Priority:  common.GetString(args, "priority"),
			Category:  common.GetString(args, "category"),
			Search:    common.GetString(args, "search"),
			SortBy:    common.GetString(args, "sort_by"),
			SortOrder: common.GetString(args, "sort_order"),
		})
		return envelopeResult(resp), nil
	}
}

func registerCompleteTask(s *mcpserver.MCPServer, sc ServerContext) {
	completeTaskTool := mcp.NewTool("complete_task",
		mcp.WithDescription("Mark a task as completed. Completing an active recurring task schedules its next occurrence."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The user who owns the task"),
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to complete"),
		),
	)

	s.AddTool(completeTaskTool, common.InstrumentedToolHandler("complete_task", sc, completeTaskHandler(sc)))
}

func completeTaskHandler(sc ServerContext) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		taskID, ok := common.GetInt(args, "task_id")
		if !ok {
			return validationError("task_id must be a positive integer"), nil
		}

		resp := sc.Tasks().CompleteTask(ctx, common.GetUserID(args), taskID)
		return envelopeResult(resp), nil
	}
}

func registerDeleteTask(s *mcpserver.MCPServer, sc ServerContext) {
	deleteTaskTool := mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task. The task disappears from all listings but remains recoverable by an operator."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The user who owns the task"),
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to delete"),
		),
	)

	s.AddTool(deleteTaskTool, common.InstrumentedToolHandler("delete_task", sc, deleteTaskHandler(sc)))
}

func deleteTaskHandler(sc ServerContext) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		taskID, ok := common.GetInt(args, "task_id")
		if !ok {
			return validationError("task_id must be a positive integer"), nil
		}

		resp := sc.Tasks().DeleteTask(ctx, common.GetUserID(args), taskID)
		return envelopeResult(resp), nil
	}
}

func registerUpdateTask(s *mcpserver.MCPServer, sc ServerContext) {
	updateTaskTool := mcp.NewTool("update_task",
		mcp.WithDescription("Update fields of an existing task. At least one field must be provided; omitted fields are left unchanged."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("The user who owns the task"),
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithString("title",
			mcp.Description("New title (1-200 characters)"),
		),
		mcp.WithString("description",
			mcp.Description("New description"),
		),
		mcp.WithString("priority",
			mcp.Description("New priority: 'high', 'medium' or 'low'"),
		),
		mcp.WithString("category",
			mcp.Description("New category"),
		),
		mcp.WithString("due_date",
			mcp.Description("New due date in ISO format (e.g., 2025-01-15T10:00:00Z)"),
		),
	)

	s.AddTool(updateTaskTool, common.InstrumentedToolHandler("update_task", sc, updateTaskHandler(sc)))
}

func updateTaskHandler(sc ServerContext) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		taskID, ok := common.GetInt(args, "task_id")
		if !ok {
			return validationError("task_id must be a positive integer"), nil
		}

		input := tasks.UpdateTaskInput{
			UserID: common.GetUserID(args),
			TaskID: taskID,
		}

		// Absent and empty are different: an explicitly supplied empty
		// title is a validation error, an omitted one leaves the field
		// alone.
		if raw, exists := args["title"]; exists {
			if s, ok := raw.(string); ok {
				input.Title = &s
			}
		}
		if raw, exists := args["description"]; exists {
			if s, ok := raw.(string); ok {
				input.Description = &s
			}
		}
		if raw, exists := args["priority"]; exists {
			if s, ok := raw.(string); ok {
				input.Priority = &s
			}
		}
		if raw, exists := args["category"]; exists {
			if s, ok := raw.(string); ok {
				input.Category = &s
			}
		}
		if _, exists := args["due_date"]; exists {
			dueDate, err := common.ParseDueDate(args, "due_date")
			if err != nil {
				return validationError(err.Error()), nil
			}
			input.DueDate = dueDate
		}

		resp := sc.Tasks().UpdateTask(ctx, input)
		return envelopeResult(resp), nil
	}
}

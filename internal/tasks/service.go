package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskchat/taskchat/internal/logging"
)

// AddTaskInput carries the arguments of the add_task operation.
// Due dates are already parsed by the transport layer.
type AddTaskInput struct {
	UserID             string
	Title              string
	Description        string
	Priority           string
	Category           string
	DueDate            *time.Time
	IsRecurring        bool
	RecurrencePattern  string
	RecurrenceInterval int
	RecurrenceEndDate  *time.Time
}

// ListTasksInput carries the arguments of the list_tasks operation.
type ListTasksInput struct {
	UserID    string
	Status    string
	Priority  string
	Category  string
	Search    string
	SortBy    string
	SortOrder string
}

// UpdateTaskInput carries the arguments of the update_task operation.
// Nil pointers mean "not supplied".
type UpdateTaskInput struct {
	UserID      string
	TaskID      int64
	Title       *string
	Description *string
	Priority    *string
	Category    *string
	DueDate     *time.Time
}

// ListResult is the data payload of a successful list_tasks call.
type ListResult struct {
	Tasks   []*Task    `json:"tasks"`
	Count   int        `json:"count"`
	Filters ListFilter `json:"filters"`
	Sort    ListSort   `json:"sort"`
}

// ListSort echoes the applied ordering back to the caller.
type ListSort struct {
	By    string `json:"by"`
	Order string `json:"order"`
}

// CompleteResult is the data payload of a successful complete_task call.
// NextTaskID and NextDueDate are set when completing a recurring task
// scheduled its next instance.
type CompleteResult struct {
	TaskID      int64      `json:"task_id"`
	Status      Status     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	NextTaskID  int64      `json:"next_task_id,omitempty"`
	NextDueDate *time.Time `json:"next_task_due_date,omitempty"`
}

// DeleteResult is the data payload of a successful delete_task call.
type DeleteResult struct {
	TaskID int64 `json:"task_id"`
}

// Service implements the five task operations on top of a Store and
// maps every outcome onto the response envelope. It is stateless and
// safe for concurrent use.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a task service. logger may be nil.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// AddTask creates a new pending task after validating all input.
// No store access happens on validation failure.
func (s *Service) AddTask(ctx context.Context, in AddTaskInput) *Response {
	if in.UserID == "" {
		return Fail(ErrCodeValidation, "user_id is required")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || utf8.RuneCountInString(title) > MaxTitleLength {
		return Fail(ErrCodeValidation, "title must be between 1 and 200 characters")
	}

	priority := Priority(in.Priority)
	if priority == "" {
		priority = PriorityMedium
	}
	if !ValidPriority(priority) {
		return Fail(ErrCodeValidation, "priority must be one of: high, medium, low")
	}

	interval := in.RecurrenceInterval
	var pattern Pattern
	if in.IsRecurring {
		pattern = Pattern(in.RecurrencePattern)
		if !ValidPattern(pattern) {
			return Fail(ErrCodeValidation, "recurrence_pattern must be one of: daily, weekly, monthly")
		}
		if interval == 0 {
			interval = 1
		}
		if interval < 1 {
			return Fail(ErrCodeValidation, "recurrence_interval must be at least 1")
		}
	} else {
		interval = 1
	}

	task := &Task{
		UserID:             in.UserID,
		Title:              title,
		Description:        in.Description,
		Status:             StatusPending,
		Priority:           priority,
		Category:           in.Category,
		DueDate:            in.DueDate,
		IsRecurring:        in.IsRecurring,
		RecurrencePattern:  pattern,
		RecurrenceInterval: interval,
		RecurrenceEndDate:  in.RecurrenceEndDate,
	}

	created, err := s.store.Create(ctx, task)
	if err != nil {
		s.logger.Error("failed to create task",
			logging.Operation("add_task"),
			logging.UserHash(in.UserID),
			logging.Err(err))
		return Fail(ErrCodeDatabase, "Failed to create task. Please try again.")
	}

	s.logger.Info("task created",
		logging.Operation("add_task"),
		logging.UserHash(in.UserID),
		logging.TaskID(created.ID))

	message := "Task created successfully"
	if created.IsRecurring {
		message += " (recurring)"
	}
	return OK(created, message)
}

// ListTasks returns the user's tasks matching the requested filters.
// Ordering defaults to created_at ascending and is deterministic for
// equal inputs.
func (s *Service) ListTasks(ctx context.Context, in ListTasksInput) *Response {
	if in.UserID == "" {
		return Fail(ErrCodeValidation, "user_id is required")
	}

	status := in.Status
	switch status {
	case "", "all":
		status = "all"
	case string(StatusPending), string(StatusCompleted):
	default:
		return Fail(ErrCodeValidation, "status must be one of: all, pending, completed")
	}

	if in.Priority != "" && !ValidPriority(Priority(in.Priority)) {
		return Fail(ErrCodeValidation, "priority must be one of: high, medium, low")
	}

	sortBy := in.SortBy
	switch sortBy {
	case "":
		sortBy = "created_at"
	case "created_at", "due_date", "priority", "title":
	default:
		return Fail(ErrCodeValidation, "sort_by must be one of: created_at, due_date, priority, title")
	}

	sortOrder := in.SortOrder
	switch sortOrder {
	case "":
		sortOrder = "asc"
	case "asc", "desc":
	default:
		return Fail(ErrCodeValidation, "sort_order must be one of: asc, desc")
	}

	filter := ListFilter{
		Status:    status,
		Priority:  in.Priority,
		Category:  in.Category,
		Search:    in.Search,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	}

	found, err := s.store.List(ctx, in.UserID, filter)
	if err != nil {
		s.logger.Error("failed to list tasks",
			logging.Operation("list_tasks"),
			logging.UserHash(in.UserID),
			logging.Err(err))
		return Fail(ErrCodeDatabase, "Failed to retrieve tasks. Please try again.")
	}

	if found == nil {
		found = []*Task{}
	}

	var message string
	switch len(found) {
	case 0:
		message = "You don't have any tasks matching these filters."
	case 1:
		message = "Found 1 task"
	default:
		message = fmt.Sprintf("Found %d tasks", len(found))
	}

	return OK(&ListResult{
		Tasks:   found,
		Count:   len(found),
		Filters: filter,
		Sort:    ListSort{By: sortBy, Order: sortOrder},
	}, message)
}

// CompleteTask marks a task completed. The operation is idempotent: a
// second call on an already-completed task returns success with the
// task unchanged. Completing an active recurring task schedules the
// next instance.
func (s *Service) CompleteTask(ctx context.Context, userID string, taskID int64) *Response {
	if userID == "" {
		return Fail(ErrCodeValidation, "user_id is required")
	}
	if taskID <= 0 {
		return Fail(ErrCodeValidation, "task_id must be a positive integer")
	}

	task, performed, err := s.store.Complete(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Fail(ErrCodeNotFound, fmt.Sprintf("Task %d not found or access denied", taskID))
		}
		s.logger.Error("failed to complete task",
			logging.Operation("complete_task"),
			logging.UserHash(userID),
			logging.TaskID(taskID),
			logging.Err(err))
		return Fail(ErrCodeDatabase, "Failed to complete task. Please try again.")
	}

	result := &CompleteResult{
		TaskID:      task.ID,
		Status:      task.Status,
		CompletedAt: task.CompletedAt,
	}

	if !performed {
		return OK(result, "Task already completed")
	}

	s.logger.Info("task completed",
		logging.Operation("complete_task"),
		logging.UserHash(userID),
		logging.TaskID(taskID))

	message := "Task completed successfully"
	if ShouldRecur(task, s.now()) {
		next, err := s.store.Create(ctx, NextInstance(task, s.now()))
		if err != nil {
			// The completion itself succeeded; report it and log the
			// scheduling failure.
			s.logger.Warn("failed to schedule next recurring instance",
				logging.Operation("complete_task"),
				logging.UserHash(userID),
				logging.TaskID(taskID),
				logging.Err(err))
		} else {
			result.NextTaskID = next.ID
			result.NextDueDate = next.DueDate
			message = fmt.Sprintf("Task completed successfully. Next occurrence created (task %d)", next.ID)
		}
	}

	return OK(result, message)
}

// DeleteTask soft-deletes a task. Subsequent operations on the id
// return not_found.
func (s *Service) DeleteTask(ctx context.Context, userID string, taskID int64) *Response {
	if userID == "" {
		return Fail(ErrCodeValidation, "user_id is required")
	}
	if taskID <= 0 {
		return Fail(ErrCodeValidation, "task_id must be a positive integer")
	}

	if err := s.store.Delete(ctx, userID, taskID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Fail(ErrCodeNotFound, fmt.Sprintf("Task %d not found or access denied", taskID))
		}
		s.logger.Error("failed to delete task",
			logging.Operation("delete_task"),
			logging.UserHash(userID),
			logging.TaskID(taskID),
			logging.Err(err))
		return Fail(ErrCodeDatabase, "Failed to delete task. Please try again.")
	}

	s.logger.Info("task deleted",
		logging.Operation("delete_task"),
		logging.UserHash(userID),
		logging.TaskID(taskID))

	return OK(&DeleteResult{TaskID: taskID}, "Task deleted successfully")
}

// UpdateTask updates the supplied fields of a task. A call providing no
// fields is a validation error and leaves the task unchanged.
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) *Response {
	if in.UserID == "" {
		return Fail(ErrCodeValidation, "user_id is required")
	}
	if in.TaskID <= 0 {
		return Fail(ErrCodeValidation, "task_id must be a positive integer")
	}

	fields := UpdateFields{
		Description: in.Description,
		Category:    in.Category,
		DueDate:     in.DueDate,
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" || utf8.RuneCountInString(title) > MaxTitleLength {
			return Fail(ErrCodeValidation, "title must be between 1 and 200 characters")
		}
		fields.Title = &title
	}

	if in.Priority != nil {
		if !ValidPriority(Priority(*in.Priority)) {
			return Fail(ErrCodeValidation, "priority must be one of: high, medium, low")
		}
		fields.Priority = in.Priority
	}

	if !fields.HasChanges() {
		return Fail(ErrCodeValidation, "No fields to update. Provide at least one of: title, description, priority, category, due_date")
	}

	updated, err := s.store.Update(ctx, in.UserID, in.TaskID, fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Fail(ErrCodeNotFound, fmt.Sprintf("Task #%d not found or you don't have permission to update it", in.TaskID))
		}
		s.logger.Error("failed to update task",
			logging.Operation("update_task"),
			logging.UserHash(in.UserID),
			logging.TaskID(in.TaskID),
			logging.Err(err))
		return Fail(ErrCodeDatabase, "Failed to update task. Please try again.")
	}

	s.logger.Info("task updated",
		logging.Operation("update_task"),
		logging.UserHash(in.UserID),
		logging.TaskID(in.TaskID))

	return OK(updated, "Task updated successfully")
}

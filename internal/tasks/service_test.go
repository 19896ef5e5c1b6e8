package tasks

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store mirroring the PostgreSQL semantics:
// user isolation in every lookup, soft delete, idempotent complete.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	tasks   map[int64]*Task
	deleted map[int64]bool
	failErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks:   make(map[int64]*Task),
		deleted: make(map[int64]bool),
	}
}

func (f *fakeStore) visible(userID string, taskID int64) *Task {
	t, ok := f.tasks[taskID]
	if !ok || f.deleted[taskID] || t.UserID != userID {
		return nil
	}
	return t
}

func (f *fakeStore) Create(_ context.Context, t *Task) (*Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}

	f.nextID++
	stored := *t
	stored.ID = f.nextID
	stored.Status = StatusPending
	stored.CreatedAt = time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	stored.UpdatedAt = stored.CreatedAt
	f.tasks[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (f *fakeStore) Get(_ context.Context, userID string, taskID int64) (*Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}

	t := f.visible(userID, taskID)
	if t == nil {
		return nil, ErrNotFound
	}
	out := *t
	return &out, nil
}

func (f *fakeStore) List(_ context.Context, userID string, filter ListFilter) ([]*Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}

	var out []*Task
	for id, t := range f.tasks {
		if f.deleted[id] || t.UserID != userID {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && string(t.Status) != filter.Status {
			continue
		}
		if filter.Priority != "" && string(t.Priority) != filter.Priority {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(t.Title), needle) &&
				!strings.Contains(strings.ToLower(t.Description), needle) {
				continue
			}
		}
		copied := *t
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		if filter.SortOrder == "desc" {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) Complete(_ context.Context, userID string, taskID int64) (*Task, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, false, f.failErr
	}

	t := f.visible(userID, taskID)
	if t == nil {
		return nil, false, ErrNotFound
	}
	if t.Status == StatusCompleted {
		out := *t
		return &out, false, nil
	}

	now := time.Now()
	t.Status = StatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	out := *t
	return &out, true, nil
}

func (f *fakeStore) Update(_ context.Context, userID string, taskID int64, fields UpdateFields) (*Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}

	t := f.visible(userID, taskID)
	if t == nil {
		return nil, ErrNotFound
	}
	if fields.Title != nil {
		t.Title = *fields.Title
	}
	if fields.Description != nil {
		t.Description = *fields.Description
	}
	if fields.Priority != nil {
		t.Priority = Priority(*fields.Priority)
	}
	if fields.Category != nil {
		t.Category = *fields.Category
	}
	if fields.DueDate != nil {
		due := *fields.DueDate
		t.DueDate = &due
	}
	t.UpdatedAt = time.Now()
	out := *t
	return &out, nil
}

func (f *fakeStore) Delete(_ context.Context, userID string, taskID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}

	if f.visible(userID, taskID) == nil {
		return ErrNotFound
	}
	f.deleted[taskID] = true
	return nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	return NewService(store, nil), store
}

func strPtr(s string) *string { return &s }

func TestAddTask_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		input AddTaskInput
	}{
		{
			name:  "missing user_id",
			input: AddTaskInput{Title: "buy milk"},
		},
		{
			name:  "empty title",
			input: AddTaskInput{UserID: "u1", Title: ""},
		},
		{
			name:  "whitespace title",
			input: AddTaskInput{UserID: "u1", Title: "   "},
		},
		{
			name:  "title too long",
			input: AddTaskInput{UserID: "u1", Title: strings.Repeat("x", 201)},
		},
		{
			name:  "multi-byte title over limit",
			input: AddTaskInput{UserID: "u1", Title: strings.Repeat("ک", 201)},
		},
		{
			name:  "invalid priority",
			input: AddTaskInput{UserID: "u1", Title: "buy milk", Priority: "urgent"},
		},
		{
			name:  "recurring without pattern",
			input: AddTaskInput{UserID: "u1", Title: "standup", IsRecurring: true},
		},
		{
			name:  "recurring with invalid pattern",
			input: AddTaskInput{UserID: "u1", Title: "standup", IsRecurring: true, RecurrencePattern: "yearly"},
		},
		{
			name:  "recurring with negative interval",
			input: AddTaskInput{UserID: "u1", Title: "standup", IsRecurring: true, RecurrencePattern: "daily", RecurrenceInterval: -2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := svc.AddTask(ctx, tt.input)
			assert.False(t, resp.Success)
			assert.Equal(t, ErrCodeValidation, resp.Error)
			assert.Nil(t, resp.Data)
		})
	}
}

func TestAddTask_Defaults(t *testing.T) {
	svc, _ := newTestService()

	resp := svc.AddTask(context.Background(), AddTaskInput{
		UserID: "u1",
		Title:  "  buy milk  ",
	})
	require.True(t, resp.Success, resp.Message)

	task, ok := resp.Data.(*Task)
	require.True(t, ok)
	assert.Equal(t, "buy milk", task.Title, "title should be trimmed")
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.NotZero(t, task.ID)
	assert.Equal(t, "Task created successfully", resp.Message)
}

// Title length is measured in code points, so a 150-character Urdu or
// Chinese title fits even though it is well over 200 bytes.
func TestAddTask_MultiByteTitle(t *testing.T) {
	svc, _ := newTestService()

	title := strings.Repeat("ک", 150)
	resp := svc.AddTask(context.Background(), AddTaskInput{UserID: "u1", Title: title})
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, title, resp.Data.(*Task).Title)
}

func TestAddTask_Recurring(t *testing.T) {
	svc, _ := newTestService()

	resp := svc.AddTask(context.Background(), AddTaskInput{
		UserID:            "u1",
		Title:             "standup",
		IsRecurring:       true,
		RecurrencePattern: "daily",
	})
	require.True(t, resp.Success)

	task := resp.Data.(*Task)
	assert.True(t, task.IsRecurring)
	assert.Equal(t, PatternDaily, task.RecurrencePattern)
	assert.Equal(t, 1, task.RecurrenceInterval, "interval defaults to 1")
	assert.Equal(t, "Task created successfully (recurring)", resp.Message)
}

func TestAddTask_StoreError(t *testing.T) {
	svc, store := newTestService()
	store.failErr = errors.New("connection refused")

	resp := svc.AddTask(context.Background(), AddTaskInput{UserID: "u1", Title: "buy milk"})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeDatabase, resp.Error)
	assert.NotContains(t, resp.Message, "connection refused", "internal cause must not leak")
}

func TestListTasks(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	resp := svc.ListTasks(ctx, ListTasksInput{UserID: "u1"})
	require.True(t, resp.Success)
	result := resp.Data.(*ListResult)
	assert.Equal(t, 0, result.Count)
	assert.NotNil(t, result.Tasks, "tasks must be an empty list, not null")
	assert.Equal(t, "You don't have any tasks matching these filters.", resp.Message)

	svc.AddTask(ctx, AddTaskInput{UserID: "u1", Title: "buy milk", Priority: "high", Category: "home"})
	svc.AddTask(ctx, AddTaskInput{UserID: "u1", Title: "write report", Category: "work"})
	svc.AddTask(ctx, AddTaskInput{UserID: "u2", Title: "other user task"})

	resp = svc.ListTasks(ctx, ListTasksInput{UserID: "u1"})
	require.True(t, resp.Success)
	result = resp.Data.(*ListResult)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, "Found 2 tasks", resp.Message)
	assert.Equal(t, "created_at", result.Sort.By)
	assert.Equal(t, "asc", result.Sort.Order)

	resp = svc.ListTasks(ctx, ListTasksInput{UserID: "u1", Category: "work"})
	result = resp.Data.(*ListResult)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "write report", result.Tasks[0].Title)
	assert.Equal(t, "Found 1 task", resp.Message)

	resp = svc.ListTasks(ctx, ListTasksInput{UserID: "u1", Search: "REPORT"})
	result = resp.Data.(*ListResult)
	assert.Equal(t, 1, result.Count)
}

func TestListTasks_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		input ListTasksInput
	}{
		{name: "missing user_id", input: ListTasksInput{}},
		{name: "invalid status", input: ListTasksInput{UserID: "u1", Status: "done"}},
		{name: "invalid priority", input: ListTasksInput{UserID: "u1", Priority: "urgent"}},
		{name: "invalid sort_by", input: ListTasksInput{UserID: "u1", SortBy: "color"}},
		{name: "invalid sort_order", input: ListTasksInput{UserID: "u1", SortOrder: "sideways"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := svc.ListTasks(ctx, tt.input)
			assert.False(t, resp.Success)
			assert.Equal(t, ErrCodeValidation, resp.Error)
		})
	}
}

func TestCompleteTask(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created := svc.AddTask(ctx, AddTaskInput{UserID: "u1", Title: "buy milk"})
	taskID := created.Data.(*Task).ID

	resp := svc.CompleteTask(ctx, "u1", taskID)
	require.True(t, resp.Success)
	result := resp.Data.(*CompleteResult)
	assert.Equal(t, StatusCompleted, result.Status)
	require.NotNil(t, result.CompletedAt)
	firstCompletedAt := *result.CompletedAt

	// Second call is an idempotent success with the task unchanged
	resp = svc.CompleteTask(ctx, "u1", taskID)
	require.True(t, resp.Success)
	result = resp.Data.(*CompleteResult)
	assert.Equal(t, "Task already completed", resp.Message)
	require.NotNil(t, result.CompletedAt)
	assert.Equal(t, firstCompletedAt, *result.CompletedAt)
}

func TestCompleteTask_NotFound(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	resp := svc.CompleteTask(ctx, "u1", 999)
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeNotFound, resp.Error)
}

func TestCompleteTask_UserIsolation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created := svc.AddTask(ctx, AddTaskInput{UserID: "u1", Title: "buy milk"})
	taskID := created.Data.(*Task).ID

	// Another user's id must behave exactly like a missing task
	resp := svc.CompleteTask(ctx, "u2", taskID)
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeNotFound, resp.Error)
}

func TestCompleteTask_RecurringSchedulesNext(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	due := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	created := svc.AddTask(ctx, AddTaskInput{
		UserID:            "u1",
		Title:             "standup",
		DueDate:           &due,
		IsRecurring:       true,
		RecurrencePattern: "daily",
	})
	taskID := created.Data.(*Task).ID

	resp := svc.CompleteTask(ctx, "u1", taskID)
	require.True(t, resp.Success)
	result := resp.Data.(*CompleteResult)
	require.NotZero(t, result.NextTaskID)
	require.NotNil(t, result.NextDueDate)
	assert.Equal(t, due.AddDate(0, 0, 1), *result.NextDueDate)

	// The next instance is a pending task visible in list_tasks
	list := svc.ListTasks(ctx, ListTasksInput{UserID: "u1", Status: "pending"})
	listResult := list.Data.(*ListResult)
	require.Equal(t, 1, listResult.Count)
	assert.Equal(t, result.NextTaskID, listResult.Tasks[0].ID)
	assert.Equal(t, "standup", listResult.Tasks[0].Title)
}

func TestCompleteTask_RecurrenceEnded(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	due := time.Date(2020, 1, 5, 9, 0, 0, 0, time.UTC)
	ended := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	created := svc.AddTask(ctx, AddTaskInput{
		UserID:            "u1",
		Title:             "standup",
		DueDate:           &due,
		IsRecurring:       true,
		RecurrencePattern: "daily",
		RecurrenceEndDate: &ended,
	})
	taskID := created.Data.(*Task).ID

	resp := svc.CompleteTask(ctx, "u1", taskID)
	require.True(t, resp.Success)
	result := resp.Data.(*CompleteResult)
	assert.Zero(t, result.NextTaskID, "ended recurrence must not schedule a next instance")
}

func TestDeleteTask(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created := svc.AddTask(ctx, AddTaskInput{UserID: "u1", Title: "buy milk"})
	taskID := created.Data.(*Task).ID

	resp := svc.DeleteTask(ctx, "u1", taskID)
	require.True(t, resp.Success)
	assert.Equal(t, taskID, resp.Data.(*DeleteResult).TaskID)

	// Gone from list_tasks
	list := svc.ListTasks(ctx, ListTasksInput{UserID: "u1"})
	assert.Equal(t, 0, list.Data.(*ListResult).Count)

	// Every further operation on the id is not_found
	assert.Equal(t, ErrCodeNotFound, svc.CompleteTask(ctx, "u1", taskID).Error)
	assert.Equal(t, ErrCodeNotFound, svc.DeleteTask(ctx, "u1", taskID).Error)
	assert.Equal(t, ErrCodeNotFound, svc.UpdateTask(ctx, UpdateTaskInput{
		UserID: "u1", TaskID: taskID, Title: strPtr("new title"),
	}).Error)
}

func TestUpdateTask(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created := svc.AddTask(ctx, AddTaskInput{UserID: "u1", Title: "buy milk", Description: "2 liters"})
	taskID := created.Data.(*Task).ID

	resp := svc.UpdateTask(ctx, UpdateTaskInput{
		UserID: "u1",
		TaskID: taskID,
		Title:  strPtr("buy oat milk"),
	})
	require.True(t, resp.Success)
	task := resp.Data.(*Task)
	assert.Equal(t, "buy oat milk", task.Title)
	assert.Equal(t, "2 liters", task.Description, "unsupplied fields stay unchanged")
}

func TestUpdateTask_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created := svc.AddTask(ctx, AddTaskInput{UserID: "u1", Title: "buy milk"})
	taskID := created.Data.(*Task).ID

	// No fields supplied
	resp := svc.UpdateTask(ctx, UpdateTaskInput{UserID: "u1", TaskID: taskID})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error)

	// Empty title after trimming
	resp = svc.UpdateTask(ctx, UpdateTaskInput{UserID: "u1", TaskID: taskID, Title: strPtr("   ")})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error)

	// Invalid priority
	resp = svc.UpdateTask(ctx, UpdateTaskInput{UserID: "u1", TaskID: taskID, Priority: strPtr("urgent")})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error)

	// Title over 200 code points, even when each one is multi-byte
	resp = svc.UpdateTask(ctx, UpdateTaskInput{UserID: "u1", TaskID: taskID, Title: strPtr(strings.Repeat("日", 201))})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error)

	// Task left unchanged by the failed updates
	get := svc.ListTasks(ctx, ListTasksInput{UserID: "u1"})
	assert.Equal(t, "buy milk", get.Data.(*ListResult).Tasks[0].Title)

	// A 200 code point multi-byte title is within the limit
	resp = svc.UpdateTask(ctx, UpdateTaskInput{UserID: "u1", TaskID: taskID, Title: strPtr(strings.Repeat("日", 200))})
	assert.True(t, resp.Success)
}

func TestUpdateTask_UserIsolation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created := svc.AddTask(ctx, AddTaskInput{UserID: "u1", Title: "buy milk"})
	taskID := created.Data.(*Task).ID

	resp := svc.UpdateTask(ctx, UpdateTaskInput{UserID: "u2", TaskID: taskID, Title: strPtr("hijacked")})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeNotFound, resp.Error)
}

// TestTaskLifecycle walks the full add -> list -> complete -> delete
// sequence for one user.
func TestTaskLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created := svc.AddTask(ctx, AddTaskInput{UserID: "u1", Title: "buy milk"})
	require.True(t, created.Success)
	taskID := created.Data.(*Task).ID

	list := svc.ListTasks(ctx, ListTasksInput{UserID: "u1"})
	require.Equal(t, 1, list.Data.(*ListResult).Count)

	completed := svc.CompleteTask(ctx, "u1", taskID)
	require.True(t, completed.Success)

	pending := svc.ListTasks(ctx, ListTasksInput{UserID: "u1", Status: "pending"})
	assert.Equal(t, 0, pending.Data.(*ListResult).Count)

	deleted := svc.DeleteTask(ctx, "u1", taskID)
	require.True(t, deleted.Success)

	again := svc.CompleteTask(ctx, "u1", taskID)
	assert.False(t, again.Success)
	assert.Equal(t, ErrCodeNotFound, again.Error)
}

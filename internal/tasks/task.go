package tasks

import (
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Priority is the task priority level.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Pattern is the recurrence pattern of a recurring task.
type Pattern string

const (
	PatternDaily   Pattern = "daily"
	PatternWeekly  Pattern = "weekly"
	PatternMonthly Pattern = "monthly"
)

// ValidPattern reports whether p is one of the known recurrence patterns.
func ValidPattern(p Pattern) bool {
	switch p {
	case PatternDaily, PatternWeekly, PatternMonthly:
		return true
	}
	return false
}

// MaxTitleLength is the maximum title length after trimming, counted
// in Unicode code points, not bytes.
const MaxTitleLength = 200

// Task is a single todo item owned by one user.
//
// ID is assigned by the database and never reused. UserID is immutable
// after creation. DueDate, RecurrenceEndDate and CompletedAt are nil
// when not set.
type Task struct {
	ID          int64    `json:"task_id"`
	UserID      string   `json:"user_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Category    string   `json:"category"`

	DueDate *time.Time `json:"due_date"`

	IsRecurring        bool       `json:"is_recurring"`
	RecurrencePattern  Pattern    `json:"recurrence_pattern,omitempty"`
	RecurrenceInterval int        `json:"recurrence_interval,omitempty"`
	RecurrenceEndDate  *time.Time `json:"recurrence_end_date,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Completed reports whether the task has been completed.
func (t *Task) Completed() bool {
	return t.Status == StatusCompleted
}

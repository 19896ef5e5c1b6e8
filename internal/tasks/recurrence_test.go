package tasks

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	now := date(2026, time.January, 1, 10)

	tests := []struct {
		name     string
		current  time.Time
		pattern  Pattern
		interval int
		want     time.Time
	}{
		{
			name:     "daily",
			current:  date(2026, time.January, 5, 9),
			pattern:  PatternDaily,
			interval: 1,
			want:     date(2026, time.January, 6, 9),
		},
		{
			name:     "every three days",
			current:  date(2026, time.January, 5, 9),
			pattern:  PatternDaily,
			interval: 3,
			want:     date(2026, time.January, 8, 9),
		},
		{
			name:     "daily across year boundary",
			current:  date(2025, time.December, 31, 9),
			pattern:  PatternDaily,
			interval: 1,
			want:     date(2026, time.January, 1, 9),
		},
		{
			name:     "weekly",
			current:  date(2026, time.January, 5, 17),
			pattern:  PatternWeekly,
			interval: 1,
			want:     date(2026, time.January, 12, 17),
		},
		{
			name:     "biweekly",
			current:  date(2026, time.January, 5, 17),
			pattern:  PatternWeekly,
			interval: 2,
			want:     date(2026, time.January, 19, 17),
		},
		{
			name:     "monthly",
			current:  date(2026, time.March, 15, 8),
			pattern:  PatternMonthly,
			interval: 1,
			want:     date(2026, time.April, 15, 8),
		},
		{
			name:     "monthly clamps to end of february",
			current:  date(2026, time.January, 31, 8),
			pattern:  PatternMonthly,
			interval: 1,
			want:     date(2026, time.February, 28, 8),
		},
		{
			name:     "monthly clamps to leap february",
			current:  date(2028, time.January, 31, 8),
			pattern:  PatternMonthly,
			interval: 1,
			want:     date(2028, time.February, 29, 8),
		},
		{
			name:     "monthly across year boundary",
			current:  date(2025, time.November, 30, 8),
			pattern:  PatternMonthly,
			interval: 3,
			want:     date(2026, time.February, 28, 8),
		},
		{
			name:     "zero interval treated as one",
			current:  date(2026, time.January, 5, 9),
			pattern:  PatternDaily,
			interval: 0,
			want:     date(2026, time.January, 6, 9),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(&tt.current, tt.pattern, tt.interval, now)
			if !got.Equal(tt.want) {
				t.Errorf("NextDueDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextDueDate_NoDueDate(t *testing.T) {
	now := date(2026, time.January, 1, 18)

	got := NextDueDate(nil, PatternDaily, 1, now)

	// Base is tomorrow at noon UTC, then advanced by the pattern
	want := date(2026, time.January, 3, 12)
	if !got.Equal(want) {
		t.Errorf("NextDueDate(nil) = %v, want %v", got, want)
	}
}

func TestShouldRecur(t *testing.T) {
	now := date(2026, time.January, 15, 0)
	past := date(2026, time.January, 1, 0)
	future := date(2026, time.February, 1, 0)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{
			name: "active recurring",
			task: Task{IsRecurring: true, RecurrencePattern: PatternDaily},
			want: true,
		},
		{
			name: "not recurring",
			task: Task{},
			want: false,
		},
		{
			name: "recurring without pattern",
			task: Task{IsRecurring: true},
			want: false,
		},
		{
			name: "end date in the future",
			task: Task{IsRecurring: true, RecurrencePattern: PatternWeekly, RecurrenceEndDate: &future},
			want: true,
		},
		{
			name: "end date passed",
			task: Task{IsRecurring: true, RecurrencePattern: PatternWeekly, RecurrenceEndDate: &past},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRecur(&tt.task, now); got != tt.want {
				t.Errorf("ShouldRecur() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextInstance(t *testing.T) {
	due := date(2026, time.January, 5, 9)
	end := date(2026, time.June, 1, 0)
	completed := Task{
		ID:                 7,
		UserID:             "u1",
		Title:              "standup",
		Description:        "team sync",
		Status:             StatusCompleted,
		Priority:           PriorityHigh,
		Category:           "work",
		DueDate:            &due,
		IsRecurring:        true,
		RecurrencePattern:  PatternDaily,
		RecurrenceInterval: 1,
		RecurrenceEndDate:  &end,
	}

	next := NextInstance(&completed, date(2026, time.January, 5, 10))

	if next.ID != 0 {
		t.Errorf("next instance must not carry the old id, got %d", next.ID)
	}
	if next.Status != StatusPending {
		t.Errorf("next instance status = %q, want pending", next.Status)
	}
	if next.UserID != "u1" || next.Title != "standup" || next.Priority != PriorityHigh {
		t.Error("next instance must carry over owner, title and priority")
	}
	if next.DueDate == nil || !next.DueDate.Equal(due.AddDate(0, 0, 1)) {
		t.Errorf("next due date = %v, want %v", next.DueDate, due.AddDate(0, 0, 1))
	}
	if next.RecurrenceEndDate == nil || !next.RecurrenceEndDate.Equal(end) {
		t.Error("recurrence end date must carry over")
	}
	if next.CompletedAt != nil {
		t.Error("next instance must not be completed")
	}
}

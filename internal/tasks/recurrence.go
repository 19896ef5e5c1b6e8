package tasks

import (
	"time"
)

// NextDueDate calculates the due date of the next instance of a
// recurring task.
//
// When the task has no due date, the base is tomorrow at noon UTC
// relative to now. Monthly recurrence clamps to the last day of the
// target month (Jan 31 + 1 month = Feb 28/29).
func NextDueDate(current *time.Time, pattern Pattern, interval int, now time.Time) time.Time {
	if interval < 1 {
		interval = 1
	}

	var base time.Time
	if current == nil {
		tomorrow := now.UTC().AddDate(0, 0, 1)
		base = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 12, 0, 0, 0, time.UTC)
	} else {
		base = *current
	}

	switch pattern {
	case PatternDaily:
		return base.AddDate(0, 0, interval)
	case PatternWeekly:
		return base.AddDate(0, 0, 7*interval)
	case PatternMonthly:
		return addMonthsClamped(base, interval)
	default:
		// Callers validate the pattern before scheduling; fall back to daily.
		return base.AddDate(0, 0, interval)
	}
}

// addMonthsClamped adds months keeping the day of month, clamping to
// the last day of the target month when the day does not exist there.
// time.AddDate would normalize Jan 31 + 1 month to Mar 2/3 instead.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	targetMonth := int(month) + months
	targetYear := year
	for targetMonth > 12 {
		targetMonth -= 12
		targetYear++
	}

	last := daysInMonth(targetYear, time.Month(targetMonth))
	if day > last {
		day = last
	}

	hour, minute, sec := t.Clock()
	return time.Date(targetYear, time.Month(targetMonth), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ShouldRecur reports whether completing a recurring task should create
// the next pending instance. Recurrence stops once the end date has
// passed.
func ShouldRecur(t *Task, now time.Time) bool {
	if !t.IsRecurring || !ValidPattern(t.RecurrencePattern) {
		return false
	}
	if t.RecurrenceEndDate != nil && !now.Before(*t.RecurrenceEndDate) {
		return false
	}
	return true
}

// NextInstance builds the next pending instance of a completed
// recurring task. The recurrence settings are carried over; the due
// date advances by the recurrence rule.
func NextInstance(t *Task, now time.Time) *Task {
	next := NextDueDate(t.DueDate, t.RecurrencePattern, t.RecurrenceInterval, now)
	return &Task{
		UserID:             t.UserID,
		Title:              t.Title,
		Description:        t.Description,
		Status:             StatusPending,
		Priority:           t.Priority,
		Category:           t.Category,
		DueDate:            &next,
		IsRecurring:        true,
		RecurrencePattern:  t.RecurrencePattern,
		RecurrenceInterval: t.RecurrenceInterval,
		RecurrenceEndDate:  t.RecurrenceEndDate,
	}
}

package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taskchat/taskchat/internal/instrumentation"
)

// ListFilter narrows and orders the tasks returned by List.
// Zero values mean "no filter". Callers validate the enumerated
// fields before the filter reaches the store.
type ListFilter struct {
	Status    string `json:"status"`   // "all", "pending" or "completed"
	Priority  string `json:"priority"` // high | medium | low
	Category  string `json:"category"`
	Search    string `json:"search"` // case-insensitive substring match on title and description
	SortBy    string `json:"-"`      // created_at | due_date | priority | title
	SortOrder string `json:"-"`      // asc | desc
}

// UpdateFields carries the mutable task fields for Update.
// Nil pointers leave the corresponding column unchanged.
type UpdateFields struct {
	Title       *string
	Description *string
	Priority    *string
	Category    *string
	DueDate     *time.Time
}

// HasChanges reports whether at least one field is set.
func (f UpdateFields) HasChanges() bool {
	return f.Title != nil || f.Description != nil || f.Priority != nil ||
		f.Category != nil || f.DueDate != nil
}

// Store persists tasks. Implementations must scope every query by user
// id and treat soft-deleted rows as absent.
type Store interface {
	// Create inserts a new pending task and returns it with the
	// database-assigned id and timestamps.
	Create(ctx context.Context, t *Task) (*Task, error)

	// Get returns the task with the given id owned by userID, or
	// ErrNotFound.
	Get(ctx context.Context, userID string, taskID int64) (*Task, error)

	// List returns the user's tasks matching the filter.
	List(ctx context.Context, userID string, f ListFilter) ([]*Task, error)

	// Complete marks a pending task completed. The returned bool is
	// true when this call performed the transition; false when the task
	// was already completed (the task is returned unchanged).
	Complete(ctx context.Context, userID string, taskID int64) (*Task, bool, error)

	// Update applies the given field changes and returns the updated task.
	Update(ctx context.Context, userID string, taskID int64, fields UpdateFields) (*Task, error)

	// Delete soft-deletes the task (deleted_at tombstone).
	Delete(ctx context.Context, userID string, taskID int64) error
}

// Querier is the subset of pgxpool.Pool the store needs. Defined here,
// by the consumer, so tests can substitute a fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore is the PostgreSQL-backed Store.
type PGStore struct {
	db      Querier
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewPGStore creates a PostgreSQL task store. logger and metrics may be
// nil.
func NewPGStore(db Querier, logger *slog.Logger, metrics *instrumentation.Metrics) *PGStore {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &PGStore{db: db, logger: logger, metrics: metrics}
}

// taskColumns is the column list matching scanTask's scan order.
const taskColumns = `id, user_id, title, description, status, priority, category,
	due_date, is_recurring, recurrence_pattern, recurrence_interval,
	recurrence_end_date, completed_at, created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	var pattern *string
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.Category, &t.DueDate, &t.IsRecurring, &pattern,
		&t.RecurrenceInterval, &t.RecurrenceEndDate, &t.CompletedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if pattern != nil {
		t.RecurrencePattern = Pattern(*pattern)
	}
	return &t, nil
}

// patternParam converts an empty pattern to NULL for insertion.
func patternParam(p Pattern) any {
	if p == "" {
		return nil
	}
	return string(p)
}

func (s *PGStore) observe(ctx context.Context, op string, start time.Time, err error) {
	status := instrumentation.StatusSuccess
	if err != nil && !errors.Is(err, ErrNotFound) {
		status = instrumentation.StatusError
	}
	s.metrics.RecordStoreOperation(ctx, instrumentation.ServiceTasks, op, status, time.Since(start))
}

// Create inserts a new pending task.
func (s *PGStore) Create(ctx context.Context, t *Task) (*Task, error) {
	ctx, span := instrumentation.StartStoreSpan(ctx, instrumentation.ServiceTasks, instrumentation.OperationCreate)
	defer span.End()
	start := time.Now()

	interval := t.RecurrenceInterval
	if interval < 1 {
		interval = 1
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO tasks (user_id, title, description, status, priority, category,
			due_date, is_recurring, recurrence_pattern, recurrence_interval, recurrence_end_date)
		VALUES ($1, $2, $3, 'pending', $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+taskColumns,
		t.UserID, t.Title, t.Description, string(t.Priority), t.Category,
		t.DueDate, t.IsRecurring, patternParam(t.RecurrencePattern), interval, t.RecurrenceEndDate,
	)

	created, err := scanTask(row)
	s.observe(ctx, instrumentation.OperationCreate, start, err)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}
	instrumentation.SetSpanSuccess(span)
	return created, nil
}

// Get returns one task scoped to the user.
func (s *PGStore) Get(ctx context.Context, userID string, taskID int64) (*Task, error) {
	ctx, span := instrumentation.StartStoreSpan(ctx, instrumentation.ServiceTasks, instrumentation.OperationGet)
	defer span.End()
	start := time.Now()

	row := s.db.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		taskID, userID,
	)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		err = ErrNotFound
	}
	s.observe(ctx, instrumentation.OperationGet, start, err)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			instrumentation.SetSpanError(span, err)
			return nil, fmt.Errorf("failed to query task: %w", err)
		}
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return t, nil
}

// List returns the user's tasks matching the filter, ordered
// deterministically (requested ordering, then id).
func (s *PGStore) List(ctx context.Context, userID string, f ListFilter) ([]*Task, error) {
	ctx, span := instrumentation.StartStoreSpan(ctx, instrumentation.ServiceTasks, instrumentation.OperationList)
	defer span.End()
	start := time.Now()

	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND deleted_at IS NULL`)
	args := []any{userID}

	switch f.Status {
	case "", "all":
		// no status filter
	default:
		args = append(args, f.Status)
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		fmt.Fprintf(&sb, " AND priority = $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		fmt.Fprintf(&sb, " AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderClause(f.SortBy, f.SortOrder))
	sb.WriteString(", id ASC")

	rows, err := s.db.Query(ctx, sb.String(), args...)
	if err != nil {
		s.observe(ctx, instrumentation.OperationList, start, err)
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			s.observe(ctx, instrumentation.OperationList, start, err)
			instrumentation.SetSpanError(span, err)
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		s.observe(ctx, instrumentation.OperationList, start, err)
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	s.observe(ctx, instrumentation.OperationList, start, nil)
	instrumentation.SetSpanSuccess(span)
	return out, nil
}

// orderClause maps the validated sort parameters to a SQL ORDER BY
// fragment. Sort columns are whitelisted here; user input never reaches
// the SQL text directly.
func orderClause(sortBy, sortOrder string) string {
	dir := "ASC"
	if sortOrder == "desc" {
		dir = "DESC"
	}

	switch sortBy {
	case "due_date":
		return "due_date " + dir + " NULLS LAST"
	case "priority":
		// high before medium before low on ascending order
		expr := "CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 WHEN 'low' THEN 3 ELSE 4 END"
		return expr + " " + dir
	case "title":
		return "title " + dir
	default:
		return "created_at " + dir
	}
}

// Complete marks a pending task completed in a single atomic statement.
// An already-completed task is returned unchanged with performed=false,
// making the operation idempotent.
func (s *PGStore) Complete(ctx context.Context, userID string, taskID int64) (*Task, bool, error) {
	ctx, span := instrumentation.StartStoreSpan(ctx, instrumentation.ServiceTasks, instrumentation.OperationComplete)
	defer span.End()
	start := time.Now()

	row := s.db.QueryRow(ctx, `
		UPDATE tasks
		SET status = 'completed', completed_at = now(), updated_at = now()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL AND status = 'pending'
		RETURNING `+taskColumns,
		taskID, userID,
	)

	t, err := scanTask(row)
	if err == nil {
		s.observe(ctx, instrumentation.OperationComplete, start, nil)
		instrumentation.SetSpanSuccess(span)
		return t, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		s.observe(ctx, instrumentation.OperationComplete, start, err)
		instrumentation.SetSpanError(span, err)
		return nil, false, fmt.Errorf("failed to complete task: %w", err)
	}

	// No pending row matched: either the task is already completed
	// (idempotent success) or it does not exist for this user.
	existing, err := s.Get(ctx, userID, taskID)
	if err != nil {
		s.observe(ctx, instrumentation.OperationComplete, start, err)
		return nil, false, err
	}

	s.observe(ctx, instrumentation.OperationComplete, start, nil)
	instrumentation.SetSpanSuccess(span)
	return existing, false, nil
}

// Update applies the provided field changes in one statement.
func (s *PGStore) Update(ctx context.Context, userID string, taskID int64, fields UpdateFields) (*Task, error) {
	ctx, span := instrumentation.StartStoreSpan(ctx, instrumentation.ServiceTasks, instrumentation.OperationUpdate)
	defer span.End()
	start := time.Now()

	sets := []string{"updated_at = now()"}
	args := []any{taskID, userID}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Title != nil {
		appendSet("title", *fields.Title)
	}
	if fields.Description != nil {
		appendSet("description", *fields.Description)
	}
	if fields.Priority != nil {
		appendSet("priority", *fields.Priority)
	}
	if fields.Category != nil {
		appendSet("category", *fields.Category)
	}
	if fields.DueDate != nil {
		appendSet("due_date", *fields.DueDate)
	}

	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		RETURNING %s`, strings.Join(sets, ", "), taskColumns)

	t, err := scanTask(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		err = ErrNotFound
	}
	s.observe(ctx, instrumentation.OperationUpdate, start, err)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			instrumentation.SetSpanError(span, err)
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
		return nil, err
	}
	instrumentation.SetSpanSuccess(span)
	return t, nil
}

// Delete soft-deletes the task. The row remains for audit but is
// invisible to every other operation.
func (s *PGStore) Delete(ctx context.Context, userID string, taskID int64) error {
	ctx, span := instrumentation.StartStoreSpan(ctx, instrumentation.ServiceTasks, instrumentation.OperationDelete)
	defer span.End()
	start := time.Now()

	tag, err := s.db.Exec(ctx, `
		UPDATE tasks
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		taskID, userID,
	)
	if err != nil {
		s.observe(ctx, instrumentation.OperationDelete, start, err)
		instrumentation.SetSpanError(span, err)
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		s.observe(ctx, instrumentation.OperationDelete, start, ErrNotFound)
		return ErrNotFound
	}

	s.observe(ctx, instrumentation.OperationDelete, start, nil)
	instrumentation.SetSpanSuccess(span)
	return nil
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/taskchat/taskchat/internal/tasks"
	"github.com/taskchat/taskchat/internal/tools/common"
)

// taskWriteRequest covers both create and update bodies. Pointers
// distinguish omitted fields from explicitly empty ones on update.
type taskWriteRequest struct {
	Title              *string `json:"title"`
	Description        *string `json:"description"`
	Priority           *string `json:"priority"`
	Category           *string `json:"category"`
	DueDate            *string `json:"due_date"`
	IsRecurring        bool    `json:"is_recurring"`
	RecurrencePattern  string  `json:"recurrence_pattern"`
	RecurrenceInterval int     `json:"recurrence_interval"`
	RecurrenceEndDate  *string `json:"recurrence_end_date"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseISODate parses an optional ISO date string using the same
// formats and error message as the MCP tools.
func parseISODate(raw *string) (*time.Time, *tasks.Response) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := common.ParseDueDate(map[string]interface{}{"d": *raw}, "d")
	if err != nil {
		return nil, tasks.Fail(tasks.ErrCodeValidation, err.Error())
	}
	return t, nil
}

func pathTaskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("task_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req taskWriteRequest
	if err := decodeBody(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "Invalid JSON body"))
		return
	}

	dueDate, fail := parseISODate(req.DueDate)
	if fail != nil {
		writeEnvelope(w, http.StatusBadRequest, fail)
		return
	}
	endDate, fail := parseISODate(req.RecurrenceEndDate)
	if fail != nil {
		writeEnvelope(w, http.StatusBadRequest, fail)
		return
	}

	resp := s.deps.Tasks().AddTask(r.Context(), tasks.AddTaskInput{
		UserID:             r.PathValue("user_id"),
		Title:              deref(req.Title),
		Description:        deref(req.Description),
		Priority:           deref(req.Priority),
		Category:           deref(req.Category),
		DueDate:            dueDate,
		IsRecurring:        req.IsRecurring,
		RecurrencePattern:  req.RecurrencePattern,
		RecurrenceInterval: req.RecurrenceInterval,
		RecurrenceEndDate:  endDate,
	})
	writeResponse(w, resp, http.StatusCreated)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp := s.deps.Tasks().ListTasks(r.Context(), tasks.ListTasksInput{
		UserID:    r.PathValue("user_id"),
		Status:    q.Get("status"),
		Priority:  q.Get("priority"),
		Category:  q.Get("category"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	})
	writeResponse(w, resp, http.StatusOK)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathTaskID(r)
	if !ok {
		writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "task_id must be a positive integer"))
		return
	}

	resp := s.deps.Tasks().CompleteTask(r.Context(), r.PathValue("user_id"), taskID)
	writeResponse(w, resp, http.StatusOK)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathTaskID(r)
	if !ok {
		writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "task_id must be a positive integer"))
		return
	}

	resp := s.deps.Tasks().DeleteTask(r.Context(), r.PathValue("user_id"), taskID)
	writeResponse(w, resp, http.StatusOK)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathTaskID(r)
	if !ok {
		writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "task_id must be a positive integer"))
		return
	}

	var req taskWriteRequest
	if err := decodeBody(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, tasks.Fail(tasks.ErrCodeValidation, "Invalid JSON body"))
		return
	}

	input := tasks.UpdateTaskInput{
		UserID:      r.PathValue("user_id"),
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	}

	if req.DueDate != nil {
		dueDate, fail := parseISODate(req.DueDate)
		if fail != nil {
			writeEnvelope(w, http.StatusBadRequest, fail)
			return
		}
		input.DueDate = dueDate
	}

	resp := s.deps.Tasks().UpdateTask(r.Context(), input)
	writeResponse(w, resp, http.StatusOK)
}

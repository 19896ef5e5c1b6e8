package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taskchat/taskchat/internal/i18n"
	"github.com/taskchat/taskchat/internal/instrumentation"
	"github.com/taskchat/taskchat/internal/logging"
	"github.com/taskchat/taskchat/internal/tasks"
)

// Agent handles one chat turn: detect the language and intent, extract
// parameters, run the task operation and render a reply in the user's
// language.
type Agent struct {
	tasks   *tasks.Service
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// New creates an Agent. logger and metrics may be nil.
func New(taskSvc *tasks.Service, logger *slog.Logger, metrics *instrumentation.Metrics) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Agent{tasks: taskSvc, logger: logger, metrics: metrics}
}

// Reply is the assistant's answer to one user message.
type Reply struct {
	Text     string `json:"text"`
	Intent   Intent `json:"intent"`
	Language string `json:"language"`
}

// Respond processes one user message. It never returns an error:
// failures become a localized error reply.
func (a *Agent) Respond(ctx context.Context, userID, message string) *Reply {
	locale := i18n.Detect(message)
	intent := DetectIntent(message)

	a.metrics.RecordChatIntent(ctx, string(intent))
	a.logger.Info("chat turn",
		logging.UserHash(userID),
		logging.Intent(string(intent)),
		logging.Locale(locale))

	reply := &Reply{Intent: intent, Language: locale}

	switch intent {
	case IntentAdd:
		reply.Text = a.addTask(ctx, userID, message, locale)
	case IntentList:
		reply.Text = a.listTasks(ctx, userID, message, locale)
	case IntentComplete:
		reply.Text = a.completeTask(ctx, userID, message, locale)
	case IntentDelete:
		reply.Text = a.deleteTask(ctx, userID, message, locale)
	case IntentUpdate:
		reply.Text = a.updateTask(ctx, userID, message, locale)
	default:
		reply.Text = i18n.T(locale, i18n.MsgUnknownIntent)
	}

	return reply
}

func (a *Agent) addTask(ctx context.Context, userID, message, locale string) string {
	title := ExtractTitle(message)
	if title == "" {
		return i18n.T(locale, i18n.MsgErrValidation)
	}

	resp := a.tasks.AddTask(ctx, tasks.AddTaskInput{
		UserID: userID,
		Title:  CleanTitle(title),
	})
	if !resp.Success {
		return errorText(locale, resp.Error)
	}

	created, ok := resp.Data.(*tasks.Task)
	if !ok {
		return i18n.T(locale, i18n.MsgErrServer)
	}
	return i18n.Tf(locale, i18n.MsgTaskCreated, created.Title, created.ID)
}

func (a *Agent) listTasks(ctx context.Context, userID, message, locale string) string {
	resp := a.tasks.ListTasks(ctx, tasks.ListTasksInput{
		UserID: userID,
		Status: ExtractStatusFilter(message),
	})
	if !resp.Success {
		return errorText(locale, resp.Error)
	}

	result, ok := resp.Data.(*tasks.ListResult)
	if !ok {
		return i18n.T(locale, i18n.MsgErrServer)
	}
	if len(result.Tasks) == 0 {
		return i18n.T(locale, i18n.MsgNoTasks)
	}

	var b strings.Builder
	b.WriteString(i18n.Tf(locale, i18n.MsgTaskListHead, len(result.Tasks)))
	for i, t := range result.Tasks {
		marker := "○"
		if t.Completed() {
			marker = "✓"
		}
		fmt.Fprintf(&b, "\n%d. %s %s (#%d)", i+1, marker, t.Title, t.ID)
	}
	return b.String()
}

func (a *Agent) completeTask(ctx context.Context, userID, message, locale string) string {
	// Resolve against pending tasks only so "complete buy milk" finds
	// the open instance.
	refs, errText := a.taskRefs(ctx, userID, "pending", locale)
	if errText != "" {
		return errText
	}
	id, ok := ExtractTaskReference(message, refs)
	if !ok {
		return i18n.T(locale, i18n.MsgErrNotFound)
	}

	resp := a.tasks.CompleteTask(ctx, userID, id)
	if !resp.Success {
		return errorText(locale, resp.Error)
	}
	return i18n.Tf(locale, i18n.MsgTaskCompleted, titleOf(refs, id), id)
}

func (a *Agent) deleteTask(ctx context.Context, userID, message, locale string) string {
	refs, errText := a.taskRefs(ctx, userID, "all", locale)
	if errText != "" {
		return errText
	}
	id, ok := ExtractTaskReference(message, refs)
	if !ok {
		return i18n.T(locale, i18n.MsgErrNotFound)
	}

	resp := a.tasks.DeleteTask(ctx, userID, id)
	if !resp.Success {
		return errorText(locale, resp.Error)
	}
	return i18n.Tf(locale, i18n.MsgTaskDeleted, titleOf(refs, id), id)
}

func (a *Agent) updateTask(ctx context.Context, userID, message, locale string) string {
	refs, errText := a.taskRefs(ctx, userID, "all", locale)
	if errText != "" {
		return errText
	}
	id, ok := ExtractTaskReference(message, refs)
	if !ok {
		return i18n.T(locale, i18n.MsgErrNotFound)
	}

	newTitle := ExtractNewTitle(message)
	if newTitle == "" {
		return i18n.T(locale, i18n.MsgErrValidation)
	}
	title := CleanTitle(newTitle)

	resp := a.tasks.UpdateTask(ctx, tasks.UpdateTaskInput{
		UserID: userID,
		TaskID: id,
		Title:  &title,
	})
	if !resp.Success {
		return errorText(locale, resp.Error)
	}

	updated, ok := resp.Data.(*tasks.Task)
	if !ok {
		return i18n.T(locale, i18n.MsgErrServer)
	}
	return i18n.Tf(locale, i18n.MsgTaskUpdated, updated.Title, updated.ID)
}

// taskRefs loads the user's tasks for reference resolution. The second
// return value is a localized error reply, "" on success.
func (a *Agent) taskRefs(ctx context.Context, userID, status, locale string) ([]TaskRef, string) {
	resp := a.tasks.ListTasks(ctx, tasks.ListTasksInput{UserID: userID, Status: status})
	if !resp.Success {
		return nil, errorText(locale, resp.Error)
	}
	result, ok := resp.Data.(*tasks.ListResult)
	if !ok {
		return nil, i18n.T(locale, i18n.MsgErrServer)
	}

	refs := make([]TaskRef, 0, len(result.Tasks))
	for _, t := range result.Tasks {
		refs = append(refs, TaskRef{ID: t.ID, Title: t.Title})
	}
	return refs, ""
}

func titleOf(refs []TaskRef, id int64) string {
	for _, r := range refs {
		if r.ID == id {
			return r.Title
		}
	}
	return ""
}

func errorText(locale, code string) string {
	switch code {
	case tasks.ErrCodeValidation:
		return i18n.T(locale, i18n.MsgErrValidation)
	case tasks.ErrCodeNotFound:
		return i18n.T(locale, i18n.MsgErrNotFound)
	default:
		return i18n.T(locale, i18n.MsgErrServer)
	}
}

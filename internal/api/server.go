// Package api serves the HTTP interface: registration, login and token
// refresh under /auth, and the JWT-protected task and chat endpoints
// under /api/{user_id}/. All responses use the same envelope as the
// MCP tools: {success, data, message, error}.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskchat/taskchat/internal/agent"
	"github.com/taskchat/taskchat/internal/auth"
	"github.com/taskchat/taskchat/internal/chat"
	"github.com/taskchat/taskchat/internal/instrumentation"
	"github.com/taskchat/taskchat/internal/tasks"
)

// Error codes used by the HTTP layer on top of the task service codes.
const (
	errCodeUnauthorized = "unauthorized"
	errCodeForbidden    = "forbidden"
)

// Deps is the slice of the server context the HTTP API needs.
// *server.ServerContext satisfies it.
type Deps interface {
	Tasks() *tasks.Service
	Auth() *auth.Service
	Chat() chat.Store
	Agent() *agent.Agent
	Logger() *slog.Logger
	Metrics() *instrumentation.Metrics
}

// Server is the HTTP API server.
type Server struct {
	deps    Deps
	handler http.Handler
}

// NewServer builds the route table. The returned server's Handler can
// be mounted on any listener.
func NewServer(deps Deps) *Server {
	s := &Server{deps: deps}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/refresh", s.handleRefresh)

	protected := http.NewServeMux()
	protected.HandleFunc("GET /api/{user_id}/tasks", s.requireUser(s.handleListTasks))
	protected.HandleFunc("POST /api/{user_id}/tasks", s.requireUser(s.handleAddTask))
	protected.HandleFunc("PATCH /api/{user_id}/tasks/{task_id}", s.requireUser(s.handleUpdateTask))
	protected.HandleFunc("PUT /api/{user_id}/tasks/{task_id}", s.requireUser(s.handleUpdateTask))
	protected.HandleFunc("DELETE /api/{user_id}/tasks/{task_id}", s.requireUser(s.handleDeleteTask))
	protected.HandleFunc("POST /api/{user_id}/tasks/{task_id}/complete", s.requireUser(s.handleCompleteTask))
	protected.HandleFunc("POST /api/{user_id}/chat", s.requireUser(s.handleChat))
	protected.HandleFunc("GET /api/{user_id}/conversations", s.requireUser(s.handleListConversations))
	protected.HandleFunc("GET /api/{user_id}/conversations/{conversation_id}/messages", s.requireUser(s.handleListMessages))

	mux.Handle("/api/", auth.Middleware(deps.Auth().JWT())(protected))

	s.handler = s.withRequestMetrics(mux)
	return s
}

// Handler returns the fully assembled route handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// requireUser enforces that the authenticated user matches the
// {user_id} path segment. Cross-user access is forbidden regardless of
// whether the target exists.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			writeEnvelope(w, http.StatusUnauthorized, tasks.Fail(errCodeUnauthorized, "Authentication required"))
			return
		}
		if r.PathValue("user_id") != claims.UserID {
			writeEnvelope(w, http.StatusForbidden, tasks.Fail(errCodeForbidden, "You don't have permission to access this resource"))
			return
		}
		next(w, r)
	}
}

func (s *Server) withRequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.deps.Metrics().RecordHTTPRequest(r.Context(), r.Method, routePattern(r), sw.status, time.Since(start))
	})
}

// routePattern returns the matched route pattern, falling back to the
// raw path for unmatched requests. Patterns keep metric label
// cardinality bounded.
func routePattern(r *http.Request) string {
	if p := r.Pattern; p != "" {
		return p
	}
	return r.URL.Path
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func writeEnvelope(w http.ResponseWriter, status int, resp *tasks.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// statusForCode maps envelope error codes to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case tasks.ErrCodeValidation:
		return http.StatusBadRequest
	case tasks.ErrCodeNotFound:
		return http.StatusNotFound
	case errCodeUnauthorized:
		return http.StatusUnauthorized
	case errCodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeResponse picks the HTTP status from the envelope itself.
func writeResponse(w http.ResponseWriter, resp *tasks.Response, successStatus int) {
	if resp.Success {
		writeEnvelope(w, successStatus, resp)
		return
	}
	writeEnvelope(w, statusForCode(resp.Error), resp)
}

// decodeBody decodes a JSON request body. An empty body leaves the
// target at its zero value.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

package logging

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	result := WithOperation(logger, "test_operation")
	if result == nil {
		t.Error("WithOperation returned nil")
	}
}

func TestWithTool(t *testing.T) {
	logger := slog.Default()
	result := WithTool(logger, "test_tool")
	if result == nil {
		t.Error("WithTool returned nil")
	}
}

func TestWithService(t *testing.T) {
	logger := slog.Default()
	result := WithService(logger, "tasks")
	if result == nil {
		t.Error("WithService returned nil")
	}
}

func TestWithUser(t *testing.T) {
	logger := slog.Default()
	result := WithUser(logger, "user-123")
	if result == nil {
		t.Error("WithUser returned nil")
	}
}

func TestOperationAttr(t *testing.T) {
	attr := Operation("test_op")
	if attr.Key != KeyOperation {
		t.Errorf("Operation key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "test_op" {
		t.Errorf("Operation value = %q, want %q", attr.Value.String(), "test_op")
	}
}

func TestServiceAttr(t *testing.T) {
	attr := Service("tasks")
	if attr.Key != KeyService {
		t.Errorf("Service key = %q, want %q", attr.Key, KeyService)
	}
	if attr.Value.String() != "tasks" {
		t.Errorf("Service value = %q, want %q", attr.Value.String(), "tasks")
	}
}

func TestToolAttr(t *testing.T) {
	attr := Tool("add_task")
	if attr.Key != KeyTool {
		t.Errorf("Tool key = %q, want %q", attr.Key, KeyTool)
	}
	if attr.Value.String() != "add_task" {
		t.Errorf("Tool value = %q, want %q", attr.Value.String(), "add_task")
	}
}

func TestTaskIDAttr(t *testing.T) {
	attr := TaskID(42)
	if attr.Key != KeyTaskID {
		t.Errorf("TaskID key = %q, want %q", attr.Key, KeyTaskID)
	}
	if attr.Value.Int64() != 42 {
		t.Errorf("TaskID value = %d, want 42", attr.Value.Int64())
	}
}

func TestStatusAttr(t *testing.T) {
	attr := Status(StatusSuccess)
	if attr.Key != KeyStatus {
		t.Errorf("Status key = %q, want %q", attr.Key, KeyStatus)
	}
	if attr.Value.String() != "success" {
		t.Errorf("Status value = %q, want %q", attr.Value.String(), "success")
	}
}

func TestErrAttr(t *testing.T) {
	err := errors.New("something failed")
	attr := Err(err)
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "something failed" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "something failed")
	}
}

func TestErrAttrNil(t *testing.T) {
	attr := Err(nil)
	// Nil errors produce an empty group that slog omits from output
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty", attr.Key)
	}
}

func TestAnonymizeUser(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		empty  bool
	}{
		{name: "regular id", userID: "user-123"},
		{name: "email as id", userID: "jane@example.com"},
		{name: "empty id", userID: "", empty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AnonymizeUser(tt.userID)
			if tt.empty {
				if result != "" {
					t.Errorf("AnonymizeUser(%q) = %q, want empty", tt.userID, result)
				}
				return
			}
			if !strings.HasPrefix(result, "user:") {
				t.Errorf("AnonymizeUser(%q) = %q, want user: prefix", tt.userID, result)
			}
			if strings.Contains(result, tt.userID) {
				t.Errorf("AnonymizeUser(%q) leaked the raw identifier", tt.userID)
			}
		})
	}
}

func TestAnonymizeUserDeterministic(t *testing.T) {
	a := AnonymizeUser("user-123")
	b := AnonymizeUser("user-123")
	if a != b {
		t.Errorf("AnonymizeUser is not deterministic: %q != %q", a, b)
	}
	c := AnonymizeUser("user-456")
	if a == c {
		t.Error("AnonymizeUser produced identical hashes for distinct identifiers")
	}
}

func TestUserHashAttr(t *testing.T) {
	attr := UserHash("user-123")
	if attr.Key != KeyUserHash {
		t.Errorf("UserHash key = %q, want %q", attr.Key, KeyUserHash)
	}
	if !strings.HasPrefix(attr.Value.String(), "user:") {
		t.Errorf("UserHash value = %q, want user: prefix", attr.Value.String())
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty token", token: "", want: "<empty>"},
		{name: "short token", token: "abc", want: "[token:3 chars]"},
		{name: "jwt-like token", token: "eyJhbGciOiJIUzI1NiJ9.payload.sig", want: "[token:32 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeToken(tt.token)
			if got != tt.want {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
			if tt.token != "" && strings.Contains(got, tt.token) {
				t.Errorf("SanitizeToken leaked token content")
			}
		})
	}
}

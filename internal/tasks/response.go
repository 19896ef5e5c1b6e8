package tasks

// Error codes carried in the response envelope's error field.
const (
	ErrCodeValidation = "validation_error"
	ErrCodeNotFound   = "not_found"
	ErrCodeDatabase   = "database_error"
	ErrCodeInternal   = "internal_error"
)

// Response is the uniform envelope returned by every task operation,
// on both the MCP tool surface and the REST API.
//
// On success: {success: true, data: ..., message: ...}.
// On failure: {success: false, data: null, message: ..., error: <code>}.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// OK builds a success envelope.
func OK(data any, message string) *Response {
	return &Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// Fail builds a failure envelope with the given error code.
func Fail(code, message string) *Response {
	return &Response{
		Success: false,
		Data:    nil,
		Message: message,
		Error:   code,
	}
}

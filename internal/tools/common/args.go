package common

import (
	"fmt"
	"math"
	"time"
)

// ErrInvalidDueDate is the message returned for unparseable due dates.
const ErrInvalidDueDate = "Invalid due_date format. Use ISO format (e.g., 2025-01-15T10:00:00Z)"

// dueDateLayouts are the accepted due date formats, tried in order.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// GetString reads an optional string argument. Missing or wrongly typed
// values return "".
func GetString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// GetUserID reads the required user_id argument.
func GetUserID(args map[string]interface{}) string {
	return GetString(args, "user_id")
}

// GetBool reads an optional boolean argument, defaulting to false.
func GetBool(args map[string]interface{}, key string) bool {
	b, _ := args[key].(bool)
	return b
}

// GetInt reads an optional integer argument. JSON numbers arrive as
// float64; integral floats and native ints are accepted, anything with
// a fractional part is rejected rather than truncated.
func GetInt(args map[string]interface{}, key string) (int64, bool) {
	switch v := args[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// ParseDueDate parses an optional due date argument. A missing or empty
// value yields (nil, nil); an unparseable one yields ErrInvalidDueDate.
func ParseDueDate(args map[string]interface{}, key string) (*time.Time, error) {
	raw := GetString(args, key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s", ErrInvalidDueDate)
}

package agent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// titlePatterns are tried in order against the lowercased message. The
// first capture group is the candidate title.
var titlePatterns = compileAll([]string{
	`(?:add|create|make|new)\s+(?:a\s+)?(?:task\s+)?(?:to\s+)?(.+)`,
	`remind\s+me\s+to\s+(.+)`,
	`i\s+(?:need|want|have)\s+to\s+(.+)`,
	`i\s+should\s+(.+)`,
})

var (
	pendingWords   = regexp.MustCompile(`\b(pending|active|open|incomplete)\b`)
	completedWords = regexp.MustCompile(`\b(completed|done|finished)\b`)

	taskIDRef = regexp.MustCompile(`(?:task\s+)?#?(\d+)`)

	// "rename X to Y", "change X to say Y"
	renameTo = regexp.MustCompile(`(?:rename|change|update|edit|modify)\s+.+?\s+to\s+(?:say\s+)?(.+)`)
)

// ExtractTitle pulls a task title out of a natural language message.
// Returns "" when no pattern matches.
//
//	"Add buy milk"                  -> "buy milk"
//	"Remind me to call mom"         -> "call mom"
//	"I need to finish the report"   -> "finish the report"
func ExtractTitle(message string) string {
	msg := strings.ToLower(strings.TrimSpace(message))
	for _, re := range titlePatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ExtractStatusFilter maps status words in the message to a list
// filter. Pending words win over completed words; the default is "all".
func ExtractStatusFilter(message string) string {
	msg := strings.ToLower(message)
	if pendingWords.MatchString(msg) {
		return "pending"
	}
	if completedWords.MatchString(msg) {
		return "completed"
	}
	return "all"
}

// TaskRef is the id/title pair the reference resolver matches against.
type TaskRef struct {
	ID    int64
	Title string
}

// ExtractTaskReference resolves which of the available tasks a message
// refers to, first by numeric id ("task 5", "#5"), then by title
// substring. A numeric match that names no existing task falls through
// to title matching.
func ExtractTaskReference(message string, available []TaskRef) (int64, bool) {
	msg := strings.ToLower(strings.TrimSpace(message))

	if m := taskIDRef.FindStringSubmatch(msg); m != nil {
		if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			for _, t := range available {
				if t.ID == id {
					return id, true
				}
			}
		}
	}

	for _, t := range available {
		title := strings.ToLower(t.Title)
		if title != "" && strings.Contains(msg, title) {
			return t.ID, true
		}
	}

	return 0, false
}

// ExtractNewTitle pulls the replacement title out of an update request
// like "rename buy milk to buy oat milk". Returns "" when the message
// carries no recognizable new value.
func ExtractNewTitle(message string) string {
	msg := strings.ToLower(strings.TrimSpace(message))
	if m := renameTo.FindStringSubmatch(msg); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// CleanTitle trims the title and upper-cases its first rune.
func CleanTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return title
	}
	r, size := utf8.DecodeRuneInString(title)
	return string(unicode.ToUpper(r)) + title[size:]
}

// Package agent turns natural language chat messages into task
// operations. Intent detection and parameter extraction are rule
// based: trigger phrase tables feed a small dispatcher that calls the
// task service and renders a localized reply.
package agent

import (
	"regexp"
	"strings"
)

// Intent classifies what the user wants to do with their tasks.
type Intent string

const (
	IntentAdd      Intent = "add"
	IntentList     Intent = "list"
	IntentComplete Intent = "complete"
	IntentDelete   Intent = "delete"
	IntentUpdate   Intent = "update"
	IntentUnknown  Intent = "unknown"
)

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

var addTriggers = compileAll([]string{
	`\b(add|create|new|make)\s+(a\s+)?(task|todo|item)`,
	`\b(remind|remember)\s+me\s+to\b`,
	`\b(i\s+need|i\s+have)\s+to\b`,
	`\b(i\s+should|i\s+want\s+to)\b`,
	`\b(put|add)\s+.+\s+(on|to)\s+(my\s+)?(list|tasks)`,
})

var listTriggers = compileAll([]string{
	`\b(show|list|display|view|see)\s+(my\s+)?(tasks|todos|items)`,
	`\bwhat(\s+are|\s+is|')s?\s+(my\s+)?(tasks|todos)`,
	`\bwhat(\s+do\s+i\s+have|'s\s+on\s+my\s+list)`,
	`\b(what|show)\s+(is\s+)?due\b`,
	`\bany\s+tasks\b`,
})

var completeTriggers = compileAll([]string{
	`\b(mark|set)\s+.+\s+(as\s+)?(done|complete|completed|finished)`,
	`\b(complete|finish|done\s+with)\s+.+`,
	`\b(i\s+)?(completed|finished|did)\s+.+`,
	`\bcheck\s+off\b`,
})

var deleteTriggers = compileAll([]string{
	`\b(delete|remove|get\s+rid\s+of)\s+.+`,
	`\b(cancel|drop)\s+.+\s+task`,
	`\bdon't\s+need\s+.+\s+anymore`,
})

var updateTriggers = compileAll([]string{
	`\b(change|update|modify|edit)\s+.+`,
	`\brename\s+.+\s+to\b`,
	`\bmake\s+.+\s+(say|be)\b`,
})

// Trigger tables are checked in order: add wins over list, list over
// complete, and so on. "Add a task to finish the report" must not be
// taken as a completion.
var intentTriggers = []struct {
	intent   Intent
	patterns []*regexp.Regexp
}{
	{IntentAdd, addTriggers},
	{IntentList, listTriggers},
	{IntentComplete, completeTriggers},
	{IntentDelete, deleteTriggers},
	{IntentUpdate, updateTriggers},
}

// DetectIntent classifies a message against the trigger tables.
// Matching is case insensitive; unmatched messages are IntentUnknown.
func DetectIntent(message string) Intent {
	msg := strings.ToLower(message)
	for _, group := range intentTriggers {
		for _, re := range group.patterns {
			if re.MatchString(msg) {
				return group.intent
			}
		}
	}
	return IntentUnknown
}

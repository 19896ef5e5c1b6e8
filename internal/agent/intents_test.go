package agent

import "testing"

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		message string
		want    Intent
	}{
		{"add a task to buy milk", IntentAdd},
		{"Create a todo for the weekend", IntentAdd},
		{"remind me to call mom", IntentAdd},
		{"I need to finish the report", IntentAdd},
		{"i should water the plants", IntentAdd},
		{"put groceries on my list", IntentAdd},

		{"show my tasks", IntentList},
		{"list my todos", IntentList},
		{"What are my tasks?", IntentList},
		{"what's on my list", IntentList},
		{"what is due today", IntentList},
		{"any tasks for me?", IntentList},

		{"mark buy milk as done", IntentComplete},
		{"complete task 5", IntentComplete},
		{"I finished the report", IntentComplete},
		{"check off the laundry", IntentComplete},

		{"delete task 3", IntentDelete},
		{"remove buy milk", IntentDelete},
		{"get rid of that old task", IntentDelete},
		{"don't need the dentist appointment anymore", IntentDelete},

		{"change the title of task 2", IntentUpdate},
		{"rename buy milk to buy oat milk", IntentUpdate},
		{"edit task 7", IntentUpdate},

		{"hello there", IntentUnknown},
		{"what's the weather like", IntentUnknown},
		{"", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := DetectIntent(tt.message); got != tt.want {
				t.Errorf("DetectIntent(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestDetectIntent_AddWinsOverComplete(t *testing.T) {
	// "finish" appears in the message but the user is creating a task
	if got := DetectIntent("add a task to finish the report"); got != IntentAdd {
		t.Errorf("got %q, want %q", got, IntentAdd)
	}
}

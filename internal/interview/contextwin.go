package interview

import "github.com/talentscout/talentbot/internal/ai"

// Policy selects how much conversation history accompanies a model call.
type Policy int

const (
	// PolicyFull sends the entire history, oldest first. Used for the
	// primary interview turns so the model keeps complete context.
	PolicyFull Policy = iota
	// PolicyTrimmed sends only the most recent messages. Used for
	// fallback handling and turn classification, where recent tone
	// matters more than the whole transcript.
	PolicyTrimmed
)

// trimmedWindow is the number of trailing history messages kept under
// PolicyTrimmed, three exchanges worth.
const trimmedWindow = 6

// BuildWindow assembles the message sequence for one model call. The system
// message is always prepended fresh, never taken from history, so it
// reflects the latest phase and profile even under the trimmed policy.
func BuildWindow(system string, history []ai.Message, policy Policy) []ai.Message {
	if policy == PolicyTrimmed && len(history) > trimmedWindow {
		history = history[len(history)-trimmedWindow:]
	}

	window := make([]ai.Message, 0, len(history)+1)
	window = append(window, ai.Message{Role: ai.RoleSystem, Text: system})
	window = append(window, history...)
	return window
}

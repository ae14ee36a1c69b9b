package interview

import "strings"

// exitPhrases are matched as substrings of the normalized candidate input.
// Bare "end" is deliberately absent: it collides with too many ordinary
// words ("recommend", "backend") under containment matching.
var exitPhrases = []string{
	"bye",
	"goodbye",
	"exit",
	"quit",
	"stop",
	"done",
	"finish",
	"close",
	"that's all",
	"thats all",
	"i'm done",
	"im done",
	"no more",
	"see you",
	"end conversation",
}

// IsExitIntent reports whether the candidate message signals a wish to end
// the interview. Matching is case-insensitive substring containment; any
// single phrase is sufficient.
func IsExitIntent(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}

	for _, phrase := range exitPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

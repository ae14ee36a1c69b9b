package interview

import "testing"

func TestIsExitIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "bare bye", input: "bye", want: true},
		{name: "uppercase", input: "GOODBYE", want: true},
		{name: "embedded phrase", input: "ok thanks, bye for now", want: true},
		{name: "im done", input: "I'm done with the questions", want: true},
		{name: "thats all", input: "that's all from me", want: true},
		{name: "quit", input: "quit", want: true},
		{name: "surrounding whitespace", input: "   exit   ", want: true},
		{name: "plain answer", input: "My name is John Doe", want: false},
		{name: "technical answer", input: "A goroutine is a lightweight thread", want: false},
		{name: "empty", input: "", want: false},
		{name: "whitespace only", input: "   ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsExitIntent(tt.input); got != tt.want {
				t.Fatalf("IsExitIntent(%q) = %v, expected %v", tt.input, got, tt.want)
			}
		})
	}
}

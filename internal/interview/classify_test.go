package interview

import "testing"

func TestParseSignal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    turnSignal
		wantErr bool
	}{
		{
			name: "plain object",
			raw:  `{"off_topic": true, "sentiment": "nervous", "confidence": 0.8}`,
			want: turnSignal{OffTopic: true, Sentiment: "nervous", Confidence: 0.8},
		},
		{
			name: "fenced",
			raw:  "```json\n{\"off_topic\": false, \"sentiment\": \"confident\", \"confidence\": 0.9}\n```",
			want: turnSignal{OffTopic: false, Sentiment: "confident", Confidence: 0.9},
		},
		{
			name: "weakly typed values",
			raw:  `{"off_topic": "true", "sentiment": "positive", "confidence": "0.7"}`,
			want: turnSignal{OffTopic: true, Sentiment: "positive", Confidence: 0.7},
		},
		{
			name: "missing sentiment defaults to neutral",
			raw:  `{"off_topic": false}`,
			want: turnSignal{OffTopic: false, Sentiment: "neutral", Confidence: 0.5},
		},
		{
			name:    "no json at all",
			raw:     "I think this message is fine.",
			wantErr: true,
		},
		{
			name:    "broken json",
			raw:     `{"off_topic": `,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseSignal(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

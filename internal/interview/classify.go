package interview

import (
	"context"
	"encoding/json"

	"github.com/talentscout/talentbot/internal/ai"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// turnSignal is the combined classification of one candidate turn: whether
// it drifted off-topic plus the emotional tone. Both ride on a single cold
// model call over trimmed context.
type turnSignal struct {
	OffTopic   bool    `mapstructure:"off_topic"`
	Sentiment  string  `mapstructure:"sentiment"`
	Confidence float64 `mapstructure:"confidence"`
}

var neutralSignal = turnSignal{Sentiment: "neutral", Confidence: 0.5}

// classifyTurn asks the model whether the candidate message is off-topic and
// what its tone is. Classification is advisory: any failure, transport or
// parse, degrades to on-topic/neutral and never fails the turn.
func (s *Session) classifyTurn(ctx context.Context, text string) turnSignal {
	window := BuildWindow(systemPrompt(s.phase, s.profile), s.history, PolicyTrimmed)
	window = append(window, ai.Message{Role: ai.RoleCandidate, Text: classifyPrompt(s.phase, text)})

	raw, err := s.generator.Generate(ctx, window, tempClassify)
	if err != nil {
		s.logger.Warn("turn classification failed", zap.Error(err))
		return neutralSignal
	}

	signal, err := parseSignal(raw)
	if err != nil {
		s.logger.Warn("turn classification unparseable",
			zap.Error(err),
			zap.String("response_preview", preview(raw)),
		)
		return neutralSignal
	}

	return signal
}

func parseSignal(raw string) (turnSignal, error) {
	start, end, ok := locateBlock(raw)
	if !ok {
		return turnSignal{}, errNoBlock
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw[start:end]), &data); err != nil {
		return turnSignal{}, err
	}

	signal := neutralSignal
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		// Models answer with "true" and "0.8" as strings often enough
		// that strict decoding would throw half the signals away.
		WeaklyTypedInput: true,
		Result:           &signal,
	})
	if err != nil {
		return turnSignal{}, err
	}

	if err := decoder.Decode(data); err != nil {
		return turnSignal{}, err
	}

	if signal.Sentiment == "" {
		signal.Sentiment = neutralSignal.Sentiment
	}

	return signal, nil
}

package ai

import (
	"context"
	"errors"
	"fmt"
)

// Role tags a chat message with its author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleCandidate Role = "candidate"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry in a conversation transcript.
type Message struct {
	Role Role
	Text string
}

// Generator is the model client contract consumed by the interview engine.
// Implementations receive the full ordered message sequence (system message
// first) and a sampling temperature, and return the generated text.
type Generator interface {
	Generate(ctx context.Context, messages []Message, temperature float32) (string, error)
	Model() string
}

// TransportError marks a failure to reach the model backend (network,
// timeout, rate limit). The interview engine never retries these itself;
// it surfaces them with the session state untouched so the caller can
// resubmit the same turn.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

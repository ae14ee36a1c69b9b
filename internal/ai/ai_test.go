package ai

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsTransport(t *testing.T) {
	base := errors.New("connection reset")
	transport := &TransportError{Err: base}

	if !IsTransport(transport) {
		t.Fatal("expected transport error to be detected")
	}

	wrapped := fmt.Errorf("submitting turn: %w", transport)
	if !IsTransport(wrapped) {
		t.Fatal("expected wrapped transport error to be detected")
	}

	if !errors.Is(wrapped, base) {
		t.Fatal("expected the cause to stay reachable through Unwrap")
	}

	if IsTransport(base) {
		t.Fatal("plain error must not be classified as transport")
	}
	if IsTransport(nil) {
		t.Fatal("nil must not be classified as transport")
	}
}

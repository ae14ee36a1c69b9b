package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestWithFieldsNilLogger(t *testing.T) {
	logger := WithFields(nil, zap.String("k", "v"))
	if logger == nil {
		t.Fatal("expected a non-nil logger")
	}
}

func TestCommonFields(t *testing.T) {
	fields := CommonFields("gemini", "gemini-2.5-flash")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].Key != FieldProvider || fields[1].Key != FieldModel {
		t.Fatalf("unexpected field keys: %+v", fields)
	}

	fields = CommonFields("  ", "gemini-2.5-flash")
	if len(fields) != 1 {
		t.Fatalf("expected blank provider to be dropped, got %d fields", len(fields))
	}
	if fields[0].Key != FieldModel {
		t.Fatalf("unexpected field: %+v", fields[0])
	}
}

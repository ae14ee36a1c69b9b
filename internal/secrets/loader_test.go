package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  file-secret \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	secret, err := Load(Source{Name: "api key", File: path, Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "file-secret" {
		t.Fatalf("unexpected secret: %q", secret)
	}
}

func TestLoadEmptyFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("   \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(Source{Name: "api key", File: path}); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TALENTBOT_TEST_SECRET", " env-secret ")

	secret, err := Load(Source{Name: "api key", Env: "TALENTBOT_TEST_SECRET", Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "env-secret" {
		t.Fatalf("unexpected secret: %q", secret)
	}
}

func TestLoadFallsBackToValue(t *testing.T) {
	secret, err := Load(Source{Name: "api key", Env: "TALENTBOT_UNSET_SECRET", Value: " inline "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "inline" {
		t.Fatalf("unexpected secret: %q", secret)
	}
}

func TestLoadNothingConfigured(t *testing.T) {
	if _, err := Load(Source{Name: "api key"}); err == nil {
		t.Fatal("expected error when nothing is configured")
	}
}

package interview

import (
	"strings"
	"testing"
)

func TestExportHashesPII(t *testing.T) {
	p := completeProfile()
	p.Sentiment = &Sentiment{Label: "confident", Confidence: 0.9}

	export := p.Export()

	for _, key := range []string{"full_name", "email", "phone"} {
		value, ok := export[key].(string)
		if !ok {
			t.Fatalf("expected %s in export", key)
		}
		if !strings.HasSuffix(value, "...") || len(value) != 15 {
			t.Fatalf("expected %s to be a 12-hex-digit digest with ellipsis, got %q", key, value)
		}
	}

	if export["email"] == "john@example.com" {
		t.Fatal("email left in clear form")
	}

	if export["desired_position"] != "Backend Engineer" {
		t.Fatalf("desired_position must stay clear, got %v", export["desired_position"])
	}
	if export["location"] != "Berlin" {
		t.Fatalf("location must stay clear, got %v", export["location"])
	}
	if export["years_experience"] != 4 {
		t.Fatalf("years_experience must stay clear, got %v", export["years_experience"])
	}

	stack, ok := export["tech_stack"].([]string)
	if !ok || len(stack) != 2 || stack[0] != "Python" {
		t.Fatalf("unexpected tech_stack: %v", export["tech_stack"])
	}

	sentiment, ok := export["sentiment"].(map[string]any)
	if !ok || sentiment["label"] != "confident" {
		t.Fatalf("unexpected sentiment: %v", export["sentiment"])
	}
}

func TestExportDeterministicHash(t *testing.T) {
	a := (&Profile{Email: strPtr("john@example.com")}).Export()
	b := (&Profile{Email: strPtr("john@example.com")}).Export()

	if a["email"] != b["email"] {
		t.Fatalf("same input must hash identically: %v vs %v", a["email"], b["email"])
	}
}

func TestExportUnsetFieldsStayEmpty(t *testing.T) {
	export := (&Profile{}).Export()

	if export["full_name"] != "" {
		t.Fatalf("unset name must export empty, got %v", export["full_name"])
	}
	if _, ok := export["years_experience"]; ok {
		t.Fatal("unset years must be absent from export")
	}
	if _, ok := export["sentiment"]; ok {
		t.Fatal("unset sentiment must be absent from export")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := completeProfile()
	clone := p.Clone()

	*clone.FullName = "Someone Else"
	clone.TechStack[0] = "Rust"

	if *p.FullName != "John Doe" {
		t.Fatalf("clone mutation leaked into original name: %q", *p.FullName)
	}
	if p.TechStack[0] != "Python" {
		t.Fatalf("clone mutation leaked into original stack: %v", p.TechStack)
	}
}

func TestSummaryMarksPending(t *testing.T) {
	p := &Profile{FullName: strPtr("John Doe")}

	summary := p.Summary()

	if !strings.Contains(summary, "Full Name: John Doe") {
		t.Fatalf("expected collected value in summary: %q", summary)
	}
	if !strings.Contains(summary, "Email Address: (pending)") {
		t.Fatalf("expected pending marker in summary: %q", summary)
	}
}

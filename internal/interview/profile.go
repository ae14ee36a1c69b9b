package interview

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
)

// Sentiment is the latest emotional-tone classification of the candidate.
type Sentiment struct {
	Label      string
	Confidence float64
}

// Profile holds the candidate information collected during the interview.
// Every field starts unset and only ever receives values that passed the
// schema validator for that field.
type Profile struct {
	FullName        *string
	Email           *string
	Phone           *string
	YearsExperience *int
	DesiredPosition *string
	Location        *string
	TechStack       []string
	Sentiment       *Sentiment
}

// Clone returns an independent copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return &Profile{}
	}

	out := &Profile{}
	out.FullName = clonePtr(p.FullName)
	out.Email = clonePtr(p.Email)
	out.Phone = clonePtr(p.Phone)
	out.YearsExperience = clonePtr(p.YearsExperience)
	out.DesiredPosition = clonePtr(p.DesiredPosition)
	out.Location = clonePtr(p.Location)
	if p.TechStack != nil {
		out.TechStack = append([]string(nil), p.TechStack...)
	}
	if p.Sentiment != nil {
		s := *p.Sentiment
		out.Sentiment = &s
	}
	return out
}

// Snapshot returns field id to display value for every schema field, with
// the empty string for fields not yet collected.
func (p *Profile) Snapshot() map[FieldID]string {
	out := make(map[FieldID]string, len(schema))
	out[FieldFullName] = derefOr(p.FullName, "")
	out[FieldEmail] = derefOr(p.Email, "")
	out[FieldPhone] = derefOr(p.Phone, "")
	out[FieldDesiredPosition] = derefOr(p.DesiredPosition, "")
	out[FieldLocation] = derefOr(p.Location, "")

	years := ""
	if p.YearsExperience != nil {
		years = strconv.Itoa(*p.YearsExperience)
	}
	out[FieldYearsExperience] = years

	out[FieldTechStack] = strings.Join(p.TechStack, ", ")
	return out
}

// Summary renders the collected fields for prompt injection, marking the
// missing ones as pending.
func (p *Profile) Summary() string {
	snapshot := p.Snapshot()

	lines := make([]string, 0, len(schema))
	for _, f := range schema {
		value := snapshot[f.ID]
		if value == "" {
			value = "(pending)"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", f.Label, value))
	}
	return strings.Join(lines, "\n")
}

// Complete reports whether every schema field holds a valid value.
func (p *Profile) Complete() bool {
	return NextMissing(p) == ""
}

// Export returns the externally persisted view of the profile. Personally
// identifying fields are one-way hashed before leaving the core; everything
// else stays in clear form. Serialization is left to the caller.
func (p *Profile) Export() map[string]any {
	out := map[string]any{
		"full_name":        anonymize(derefOr(p.FullName, "")),
		"email":            anonymize(derefOr(p.Email, "")),
		"phone":            anonymize(derefOr(p.Phone, "")),
		"desired_position": derefOr(p.DesiredPosition, ""),
		"location":         derefOr(p.Location, ""),
		"tech_stack":       append([]string(nil), p.TechStack...),
	}

	if p.YearsExperience != nil {
		out["years_experience"] = *p.YearsExperience
	}

	if p.Sentiment != nil {
		out["sentiment"] = map[string]any{
			"label":      p.Sentiment.Label,
			"confidence": p.Sentiment.Confidence,
		}
	}

	return out
}

// anonymize replaces a PII value with a short one-way digest. Unset values
// stay empty so exports distinguish "missing" from "redacted".
func anonymize(value string) string {
	if value == "" {
		return ""
	}
	digest := sha256.Sum256([]byte(value))
	return fmt.Sprintf("%x", digest)[:12] + "..."
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func derefOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}

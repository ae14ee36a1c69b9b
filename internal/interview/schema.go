package interview

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldID identifies a candidate profile field in the collection schema.
type FieldID string

const (
	FieldFullName        FieldID = "full_name"
	FieldEmail           FieldID = "email"
	FieldPhone           FieldID = "phone"
	FieldYearsExperience FieldID = "years_experience"
	FieldDesiredPosition FieldID = "desired_position"
	FieldLocation        FieldID = "location"
	FieldTechStack       FieldID = "tech_stack"
)

var validate = validator.New()

var (
	phoneSeparators = regexp.MustCompile(`[\s\-().]+`)
	phonePattern    = regexp.MustCompile(`^\+?\d{7,15}$`)
	yearsPattern    = regexp.MustCompile(`^(\d+)`)
	techSeparators  = regexp.MustCompile(`[,;/\n]+`)
)

// Field describes one entry of the collection schema: its stable identifier,
// the label used in prompts, and how a raw extracted value is validated and
// merged into a profile.
type Field struct {
	ID    FieldID
	Label string

	// apply normalizes and validates the raw value, assigning it to the
	// profile only when valid. It reports whether the value was accepted.
	apply func(p *Profile, raw string) bool

	// set reports whether the profile already holds a valid value.
	set func(p *Profile) bool
}

// schema is the ordered list of fields the interview collects. The order is
// fixed: it is what makes "ask for the next missing field" deterministic no
// matter what the model replies.
var schema = []Field{
	{
		ID:    FieldFullName,
		Label: "Full Name",
		apply: func(p *Profile, raw string) bool {
			v, ok := normalizeText(raw)
			if ok {
				p.FullName = &v
			}
			return ok
		},
		set: func(p *Profile) bool { return p.FullName != nil },
	},
	{
		ID:    FieldEmail,
		Label: "Email Address",
		apply: func(p *Profile, raw string) bool {
			v, ok := normalizeEmail(raw)
			if ok {
				p.Email = &v
			}
			return ok
		},
		set: func(p *Profile) bool { return p.Email != nil },
	},
	{
		ID:    FieldPhone,
		Label: "Phone Number",
		apply: func(p *Profile, raw string) bool {
			v, ok := normalizePhone(raw)
			if ok {
				p.Phone = &v
			}
			return ok
		},
		set: func(p *Profile) bool { return p.Phone != nil },
	},
	{
		ID:    FieldYearsExperience,
		Label: "Years of Experience",
		apply: func(p *Profile, raw string) bool {
			v, ok := normalizeYears(raw)
			if ok {
				p.YearsExperience = &v
			}
			return ok
		},
		set: func(p *Profile) bool { return p.YearsExperience != nil },
	},
	{
		ID:    FieldDesiredPosition,
		Label: "Desired Position",
		apply: func(p *Profile, raw string) bool {
			v, ok := normalizeText(raw)
			if ok {
				p.DesiredPosition = &v
			}
			return ok
		},
		set: func(p *Profile) bool { return p.DesiredPosition != nil },
	},
	{
		ID:    FieldLocation,
		Label: "Current Location",
		apply: func(p *Profile, raw string) bool {
			v, ok := normalizeText(raw)
			if ok {
				p.Location = &v
			}
			return ok
		},
		set: func(p *Profile) bool { return p.Location != nil },
	},
	{
		ID:    FieldTechStack,
		Label: "Tech Stack",
		apply: func(p *Profile, raw string) bool {
			v := SplitTechStack(raw)
			if len(v) == 0 {
				return false
			}
			p.TechStack = v
			return true
		},
		set: func(p *Profile) bool { return len(p.TechStack) > 0 },
	},
}

// Fields returns the schema in declared order.
func Fields() []Field {
	out := make([]Field, len(schema))
	copy(out, schema)
	return out
}

// NextMissing returns the first schema field not yet holding a valid value,
// or the empty id when the profile is complete. Deterministic for a given
// profile.
func NextMissing(p *Profile) FieldID {
	for _, f := range schema {
		if !f.set(p) {
			return f.ID
		}
	}
	return ""
}

// FieldLabel returns the human label for the given field id, or the id
// itself when unknown.
func FieldLabel(id FieldID) string {
	for _, f := range schema {
		if f.ID == id {
			return f.Label
		}
	}
	return string(id)
}

// ApplyField normalizes and merges a single raw value into the profile.
// Unknown field ids and values failing validation are rejected without
// touching the profile.
func ApplyField(p *Profile, id FieldID, raw string) bool {
	for _, f := range schema {
		if f.ID == id {
			return f.apply(p, raw)
		}
	}
	return false
}

func normalizeText(raw string) (string, bool) {
	v := strings.Join(strings.Fields(raw), " ")
	return v, v != ""
}

func normalizeEmail(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if err := validate.Var(v, "required,email"); err != nil {
		return "", false
	}
	return v, true
}

func normalizePhone(raw string) (string, bool) {
	v := phoneSeparators.ReplaceAllString(strings.TrimSpace(raw), "")
	if !phonePattern.MatchString(v) {
		return "", false
	}
	return v, true
}

// normalizeYears accepts answers like "4", "4 years" or "4.5", keeping the
// leading whole number. Negative values never match.
func normalizeYears(raw string) (int, bool) {
	m := yearsPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, false
	}
	years, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return years, true
}

// SplitTechStack parses a free-form technology list into individual entries,
// deduplicated case-insensitively with first-seen order and casing kept.
func SplitTechStack(raw string) []string {
	parts := techSeparators.Split(raw, -1)

	seen := make(map[string]struct{})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		tech := strings.Trim(strings.TrimSpace(part), "-•* \t")
		if tech == "" {
			continue
		}
		key := strings.ToLower(tech)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tech)
	}
	return out
}

package interview

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// blockMarker is the delimiter the prompts instruct the model to place in
// front of the structured block. Models omit it often enough that the
// locator also falls back to bare brace scanning.
const blockMarker = "```json"

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// Extraction is the dual-output view of one model reply: the human-facing
// text with the structured block removed, and the schema-validated fields
// the block contained.
type Extraction struct {
	DisplayText string
	Fields      map[FieldID]string
	ParseOK     bool
}

// Extract parses a model reply into its display portion and structured
// fields. Extraction never fails the turn: when no well-formed block is
// found the whole reply is returned as display text with no fields.
func Extract(reply string) Extraction {
	start, end, ok := locateBlock(reply)
	if !ok {
		return Extraction{DisplayText: reply, Fields: map[FieldID]string{}}
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(reply[start:end]), &payload); err != nil {
		return Extraction{DisplayText: reply, Fields: map[FieldID]string{}}
	}

	// The gathering prompt asks for {"extracted": {...}, "all_collected": ...};
	// unwrap the envelope when present, but accept a flat object too. The
	// all_collected hint is ignored: schema completeness is the only
	// transition trigger.
	if inner, ok := payload["extracted"].(map[string]any); ok {
		payload = inner
	}

	fields := make(map[FieldID]string, len(payload))
	probe := &Profile{}
	for key, value := range payload {
		raw := coerceString(value)
		if raw == "" || strings.EqualFold(raw, "null") {
			continue
		}
		// Unknown keys and values the schema validator rejects are
		// silently dropped; a single bad field never fails the turn.
		if !ApplyField(probe, FieldID(key), raw) {
			continue
		}
		fields[FieldID(key)] = raw
	}

	return Extraction{
		DisplayText: stripBlock(reply, start, end),
		Fields:      fields,
		ParseOK:     true,
	}
}

// locateBlock finds the structured block's brace span. A declared marker
// wins; without one the last balanced top-level brace pair in the reply is
// used. Returns false when no balanced pair exists.
func locateBlock(reply string) (start, end int, ok bool) {
	if idx := strings.Index(reply, blockMarker); idx != -1 {
		if s, e, found := firstBalanced(reply, idx+len(blockMarker)); found {
			return s, e, true
		}
	}
	return lastBalanced(reply)
}

// firstBalanced returns the first balanced brace pair at or after from.
func firstBalanced(s string, from int) (int, int, bool) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := from; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return start, i + 1, true
			}
		}
	}

	return 0, 0, false
}

// lastBalanced returns the last balanced top-level brace pair in s.
func lastBalanced(s string) (int, int, bool) {
	var start, end int
	found := false

	from := 0
	for {
		st, en, ok := firstBalanced(s, from)
		if !ok {
			break
		}
		start, end, found = st, en, true
		from = en
	}

	return start, end, found
}

// stripBlock removes exactly the matched block from the reply, widening the
// cut to cover the surrounding code fence and marker when present, then
// collapses the residual whitespace.
func stripBlock(reply string, start, end int) string {
	head := reply[:start]
	tail := reply[end:]

	if idx := strings.LastIndex(head, blockMarker); idx != -1 && strings.TrimSpace(head[idx+len(blockMarker):]) == "" {
		head = head[:idx]
	}

	trimmedTail := strings.TrimLeft(tail, " \t\r\n")
	if strings.HasPrefix(trimmedTail, "```") {
		tail = strings.TrimPrefix(trimmedTail, "```")
	}

	out := head + tail
	out = excessNewlines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// coerceString renders a decoded JSON value the way the model usually means
// it: strings as-is, numbers without exponent noise, everything else via
// its JSON form.
func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case nil:
		return ""
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(bytes)
	}
}

package genai

import (
	"encoding/json"
	"errors"
	"strings"
)

// Parse failures. Each stage of the extraction returns a typed error so the
// caller's fallback trigger is an explicit branch.
var (
	ErrNoArrayFound = errors.New("no JSON array found in model output")
	ErrInvalidArray = errors.New("model output is not a valid JSON string array")
)

// ExtractIDArray recovers a JSON array of id strings from free-form model
// output. Stage one strips markdown code fences; stage two scans for the
// first well-formed JSON array literal and parses it strictly; stage three
// falls back to parsing the entire cleaned text.
func ExtractIDArray(raw string) ([]string, error) {
	cleaned := stripCodeFences(raw)
	if !strings.ContainsRune(cleaned, '[') {
		return nil, ErrNoArrayFound
	}

	if candidate, ok := firstArrayLiteral(cleaned); ok {
		var ids []string
		if err := json.Unmarshal([]byte(candidate), &ids); err == nil {
			return ids, nil
		}
		// The located literal was array-shaped but not a string array;
		// try the whole text before giving up.
	}

	var ids []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), &ids); err != nil {
		return nil, ErrInvalidArray
	}
	return ids, nil
}

// stripCodeFences removes markdown code-fence markers, including the
// ```json variant, leaving the fenced content in place.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// firstArrayLiteral returns the first balanced JSON array literal in s.
// Bracket depth is tracked outside string literals only, so ids containing
// brackets do not break the scan.
func firstArrayLiteral(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

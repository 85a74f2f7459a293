package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSONArray finds the first bracketed block in text and decodes it
// as a list of strings. Surrounding prose and code fences are ignored.
func ExtractJSONArray(text string) ([]string, error) {
	block, ok := firstBlock(text, '[', ']')
	if !ok {
		return nil, ErrInvalidResponse
	}

	var out []string
	if err := json.Unmarshal([]byte(block), &out); err != nil {
		return nil, ErrInvalidResponse
	}
	return out, nil
}

// ExtractJSONObject finds the first brace-delimited block in text and
// decodes it into v.
func ExtractJSONObject(text string, v any) error {
	block, ok := firstBlock(text, '{', '}')
	if !ok {
		return ErrInvalidResponse
	}
	if err := json.Unmarshal([]byte(block), v); err != nil {
		return ErrInvalidResponse
	}
	return nil
}

// firstBlock returns the substring from the first open delimiter to its
// matching close, skipping delimiters inside JSON strings.
func firstBlock(text string, opening, closing byte) (string, bool) {
	start := strings.IndexByte(text, opening)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
			inString = true
		case opening:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

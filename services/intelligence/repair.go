package intelligence

import (
	"errors"
	"strings"
)

// extractJSON finds the JSON object in an interpreter response (handles
// markdown wrappers and leading prose) and repairs truncated output by
// closing whatever delimiters are still open. Truncation happens when the
// model hits its output limit mid-object; best-effort structural repair
// recovers the fields that did arrive.
func extractJSON(response string) (string, error) {
	start := strings.Index(response, "{")
	if start == -1 {
		return "", errors.New("no JSON object in interpreter response")
	}

	var (
		depth    int
		inString bool
		escaped  bool
		stack    []byte
	)
	for i := start; i < len(response); i++ {
		ch := response[i]
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
		case '{':
			depth++
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				return "", errors.New("mismatched delimiters in interpreter response")
			}
			stack = stack[:len(stack)-1]
			if ch == '}' {
				depth--
				if depth == 0 {
					return response[start : i+1], nil
				}
			}
		}
	}

	// Ran off the end: repair the truncation.
	repaired := strings.TrimRight(response[start:], " \t\r\n")
	if inString {
		repaired += `"`
	}
	repaired = strings.TrimRight(repaired, " \t\r\n")
	// A dangling comma or colon would still be invalid after closing.
	repaired = strings.TrimRight(repaired, ",")
	if strings.HasSuffix(repaired, ":") {
		repaired += "null"
	}
	for i := len(stack) - 1; i >= 0; i-- {
		repaired += string(stack[i])
	}
	return repaired, nil
}

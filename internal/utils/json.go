package utils

import (
	"errors"
	"strings"
)

// ErrNoJSON is returned when text holds no JSON object or array.
var ErrNoJSON = errors.New("no json found")

// ExtractJSON returns the JSON payload embedded in an LLM reply. It strips
// markdown code fences and otherwise slices from the first opening brace or
// bracket to the matching last closing one.
func ExtractJSON(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	if fenced, ok := stripFence(clean); ok {
		clean = fenced
	}

	objStart := strings.Index(clean, "{")
	arrStart := strings.Index(clean, "[")

	closer := "}"
	start := objStart
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		closer = "]"
		start = arrStart
	}
	if start < 0 {
		return "", ErrNoJSON
	}
	end := strings.LastIndex(clean, closer)
	if end <= start {
		return "", ErrNoJSON
	}
	return clean[start : end+1], nil
}

func stripFence(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	body := text[start+3:]
	if nl := strings.Index(body, "\n"); nl >= 0 {
		body = body[nl+1:]
	}
	end := strings.Index(body, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(body[:end]), true
}

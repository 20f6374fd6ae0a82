package logging

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Document text can be large and private, so these keys are logged as a
// length summary instead of their value.
var contentKeys = map[string]bool{
	"content": true,
	"search":  true,
	"replace": true,
	"text":    true,
}

func SummarizeValue(value string) string {
	if value == "" {
		return ""
	}
	lines := strings.Count(value, "\n") + 1
	return fmt.Sprintf("<%d chars, %d lines>", utf8.RuneCountInString(value), lines)
}

func SummarizeAny(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			if isContentKey(key) {
				if text, ok := val.(string); ok {
					out[key] = SummarizeValue(text)
					continue
				}
			}
			out[key] = SummarizeAny(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = SummarizeAny(val)
		}
		return out
	default:
		return value
	}
}

func SummarizeJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return SummarizeValue(strings.TrimSpace(string(raw)))
	}
	return SummarizeAny(payload)
}

func isContentKey(key string) bool {
	return contentKeys[strings.ToLower(strings.TrimSpace(key))]
}

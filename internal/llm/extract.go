package llm

import (
	"strings"

	"github.com/tidwall/gjson"

	appErrors "github.com/lockin-app/lockin-api/pkg/errors"
)

// ExtractJSON recovers the first JSON object from raw model output. Models
// regularly wrap their JSON in code fences or prose despite instructions.
func ExtractJSON(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)

	if fenced := stripCodeFence(candidate); fenced != "" {
		candidate = fenced
	}

	start := strings.IndexByte(candidate, '{')
	if start < 0 {
		return "", appErrors.Clone(appErrors.ErrUpstream, "model output contains no JSON object")
	}
	candidate = candidate[start:]

	parsed := gjson.Parse(candidate)
	if !parsed.IsObject() {
		return "", appErrors.Clone(appErrors.ErrUpstream, "model output is not a valid JSON object")
	}

	// gjson.Parse tolerates trailing garbage; Raw is the balanced object.
	if !gjson.Valid(parsed.Raw) {
		return "", appErrors.Clone(appErrors.ErrUpstream, "model output is not a valid JSON object")
	}
	return parsed.Raw, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return ""
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

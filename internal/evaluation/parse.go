package evaluation

import (
	"encoding/json"
	"strings"
)

// ParseResult decodes the model's text output into a Result. The model is
// instructed to return bare JSON, but responses wrapped in markdown code
// fences are tolerated by stripping the fence before decoding. A decode
// failure is a first-class InvalidAIResponse carrying the raw text; no
// repair is attempted. When the decoded result lacks a hash, the locally
// computed fingerprint is injected.
func ParseResult(raw, fingerprint string) (*Result, *Error) {
	var result Result
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &result); err != nil {
		return nil, &Error{
			Code:    CodeInvalidAIResponse,
			Message: "The model did not return valid JSON. See raw response.",
			Raw:     raw,
		}
	}

	if result.Hash == "" {
		result.Hash = fingerprint
	}
	return &result, nil
}

// stripCodeFence removes a surrounding ```json ... ``` (or bare ```) fence.
// Anything else is returned unchanged.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag on the opening line, e.g. "json".
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

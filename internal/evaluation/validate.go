package evaluation

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	minPromptLength = 40
	minPromptWords  = 6
	duplicateWindow = time.Hour
)

// instructionPhrases are the signals that a text is an instruction-style
// prompt rather than free-form prose. Matching is case-insensitive substring.
var instructionPhrases = []string{
	"you are", "respond", "return", "step", "task",
	"format", "explain", "analyze", "summarize",
}

// Validate applies the shallow-quality rules in fixed order; the first
// failing rule wins and each rule carries its own user-facing message.
// The prompt must already be trimmed.
func Validate(prompt string) *Error {
	if prompt == "" {
		return &Error{
			Code:    CodeInvalidPrompt,
			Message: "Prompt is empty. Please enter a prompt for evaluation.",
		}
	}
	// Characters, not bytes: accented prompts must not get extra length credit.
	if utf8.RuneCountInString(prompt) < minPromptLength {
		return &Error{
			Code:    CodeInvalidPrompt,
			Message: "Prompt is too short. Please enter at least 40 characters.",
		}
	}
	if len(strings.Fields(prompt)) < minPromptWords {
		return &Error{
			Code:    CodeInvalidPrompt,
			Message: "Prompt must contain at least 6 words.",
		}
	}
	if !containsInstructionPhrase(prompt) {
		return &Error{
			Code: CodeInvalidPrompt,
			Message: "Prompt must include an instruction phrase such as 'you are', 'respond', " +
				"'return', 'step', 'task', 'format', 'explain', 'analyze', or 'summarize'.",
		}
	}
	return nil
}

func containsInstructionPhrase(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, phrase := range instructionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// CheckDuplicate applies the client-cooperative duplicate guard: if the
// caller echoes back the fingerprint and timestamp of its previous
// evaluation, and the fingerprint matches and the previous evaluation is
// under an hour old, the submission is rejected. The server keeps no history
// for this check; a client that omits the fields bypasses it, which is
// accepted (the authoritative limit is the usage gate).
func CheckDuplicate(fingerprint, lastHash, lastTS string, now time.Time) *Error {
	if lastHash == "" || lastTS == "" || lastHash != fingerprint {
		return nil
	}
	previous, err := time.Parse(time.RFC3339, lastTS)
	if err != nil {
		// Unparseable client timestamps disable the guard rather than
		// failing the request.
		return nil
	}
	if now.Sub(previous) < duplicateWindow {
		return &Error{
			Code:    CodeDuplicatePrompt,
			Message: "This prompt was already evaluated recently. Please refine it before requesting another evaluation.",
		}
	}
	return nil
}

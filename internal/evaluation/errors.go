package evaluation

// Code identifies one of the terminal failure outcomes of the pipeline.
type Code string

const (
	CodeInvalidPrompt     Code = "InvalidPrompt"
	CodeDuplicatePrompt   Code = "DuplicatePrompt"
	CodeInvalidAIResponse Code = "InvalidAIResponse"
	// CodeFreeLimitExceeded is part of the client-facing taxonomy: the UI
	// renders it when the usage endpoints report the free evaluation as
	// consumed. The server never returns it from /evaluate, which does not
	// enforce the gate.
	CodeFreeLimitExceeded Code = "FreeLimitExceeded"
	CodeServerError       Code = "ServerError"
)

// Error is the structured error body returned to the client. Validation and
// duplicate-guard failures travel with HTTP 200 so the UI can render them
// inline; only ServerError maps to a 500.
type Error struct {
	Code    Code   `json:"error"`
	Message string `json:"message"`
	// Raw carries the unparsed model output for InvalidAIResponse so the
	// caller can inspect what came back.
	Raw string `json:"raw,omitempty"`
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

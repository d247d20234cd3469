package evaluation

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

// Completer is the outbound text-generation call: system instructions plus
// user content in, a single text payload out. Satisfied by gemini.Client.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Pipeline runs one prompt evaluation end to end: validation, duplicate
// guard, delegation to the completion service, and response normalization.
// It is stateless per call; every invocation ends in exactly one of
// InvalidPrompt, DuplicatePrompt, InvalidAIResponse, ServerError, or a
// Result. No stage retries.
type Pipeline struct {
	completer Completer
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time
}

// NewPipeline creates a pipeline around a completion client. timeout bounds
// the single outbound call; expiry surfaces as ServerError.
func NewPipeline(completer Completer, logger *slog.Logger, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Pipeline{
		completer: completer,
		logger:    logger.With("component", "evaluation"),
		timeout:   timeout,
		now:       time.Now,
	}
}

// Evaluate processes one submission. The returned *Error is nil exactly when
// the *Result is not.
func (p *Pipeline) Evaluate(ctx context.Context, sub Submission) (*Result, *Error) {
	prompt := trimmedPrompt(sub)
	fingerprint := Fingerprint(prompt)

	if errResult := Validate(prompt); errResult != nil {
		p.logger.Debug("Prompt rejected by validation", "code", errResult.Code, "fingerprint", fingerprint)
		return nil, errResult
	}

	if errResult := CheckDuplicate(fingerprint, sub.LastHash, sub.LastTS, p.now()); errResult != nil {
		p.logger.Debug("Prompt rejected as duplicate", "fingerprint", fingerprint)
		return nil, errResult
	}

	metaJSON := ""
	if len(sub.Meta) > 0 {
		encoded, err := json.Marshal(sub.Meta)
		if err != nil {
			p.logger.Error("Failed to encode submission meta", "error", err)
			return nil, serverError()
		}
		metaJSON = string(encoded)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.completer.Complete(callCtx, SystemInstruction(), UserContent(sub, metaJSON))
	if err != nil {
		p.logger.Error("Completion call failed", "error", err, "fingerprint", fingerprint)
		return nil, serverError()
	}

	result, errResult := ParseResult(raw, fingerprint)
	if errResult != nil {
		p.logger.Warn("Model returned unparseable output", "fingerprint", fingerprint, "raw_length", len(raw))
		return nil, errResult
	}

	p.logger.Info("Prompt evaluated", "fingerprint", fingerprint, "overall_score", result.OverallScore)
	return result, nil
}

func trimmedPrompt(sub Submission) string {
	return strings.TrimSpace(sub.Prompt)
}

func serverError() *Error {
	return &Error{
		Code:    CodeServerError,
		Message: "An error occurred while evaluating the prompt.",
	}
}

// Package gemini wraps the generative-ai-go SDK behind the single completion
// call the evaluation pipeline needs.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client issues one-shot completion requests against a Gemini model. It
// implements evaluation.Completer.
type Client struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a Gemini client for the given model.
func NewClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
		logger: logger.With("component", "gemini"),
	}, nil
}

// Complete sends the system instructions and user content as a single
// request and returns the concatenated text of the first candidate. The
// model is asked for JSON output directly; callers still treat the reply as
// untrusted text. No streaming, no retries.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini candidate contained no text parts")
	}

	c.logger.Debug("Completion received", "model", c.model, "length", b.Len())
	return b.String(), nil
}

// Close releases the underlying SDK connection.
func (c *Client) Close() error {
	return c.client.Close()
}

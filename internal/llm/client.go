// Package llm provides the text-completion capability behind an
// OpenAI-compatible chat API.
package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"search-orchestrator/internal/common/config"
	"search-orchestrator/internal/retrieval"
)

// Client implements retrieval.Completer using langchaingo.
type Client struct {
	model       llms.Model
	temperature float64
}

// NewClient creates a completion client for the configured backend. A base
// URL pointing at any OpenAI-compatible service works; local services that
// skip authentication accept a placeholder token.
func NewClient(cfg config.CompletionConfig) (*Client, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}
	opts = append(opts, openai.WithToken(token))

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("completion client init failed: %w", err)
	}

	return &Client{model: model, temperature: cfg.Temperature}, nil
}

// Complete sends one prompt and returns the raw text of the first choice.
// The reply is free-form; callers must treat it as unstructured.
func (c *Client) Complete(ctx context.Context, prompt string, opts retrieval.CompleteOptions) (string, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	// A nil Temperature falls back to the configured default; an explicit
	// pointer is honored as-is, so evaluation can pin zero.
	temperature := c.temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	callOpts := []llms.CallOption{llms.WithTemperature(temperature)}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	if opts.JSONMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	response, err := c.model.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", fmt.Errorf("completion call failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return response.Choices[0].Content, nil
}

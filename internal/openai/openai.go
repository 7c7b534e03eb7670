package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/libreo-books/libreo/internal/providers"
	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI is a provider for OpenAI-compatible chat completion APIs
type OpenAI struct {
	client *goopenai.Client
}

// New returns a new OpenAI provider. baseURL may point at any
// OpenAI-compatible server; empty keeps the public API.
func New(apiKey, baseURL string, timeout time.Duration) *OpenAI {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAI{client: goopenai.NewClientWithConfig(cfg)}
}

func (o *OpenAI) Name() string { return "openai" }

// Generate sends the prompt as a single user message
func (o *OpenAI) Generate(ctx context.Context, config providers.Config) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model: config.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: config.Prompt},
		},
		Temperature: float32(config.Temperature),
	}
	if config.JSON {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return "", fmt.Errorf("%w: failed to decode response body: %w", providers.ErrBadResponse, err)
		}
		return "", fmt.Errorf("%w: openai error: %w", providers.ErrUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned from OpenAI", providers.ErrBadResponse)
	}

	return resp.Choices[0].Message.Content, nil
}

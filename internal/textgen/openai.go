// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"context"
	"errors"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIBackend calls an OpenAI-compatible chat completions endpoint. Groq
// and DeepSeek are reached through the same client with a base URL.
type OpenAIBackend struct {
	client   openai.Client
	provider string
	model    string
}

// NewOpenAIBackend creates a backend for an OpenAI-compatible provider.
// baseURL may be empty for the OpenAI default endpoint.
func NewOpenAIBackend(provider, apiKey, baseURL, model string, timeout time.Duration) *OpenAIBackend {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// Retries are owned by Client.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &OpenAIBackend{
		client:   openai.NewClient(opts...),
		provider: provider,
		model:    model,
	}
}

// Provider returns the configured provider name, such as "groq".
func (o *OpenAIBackend) Provider() string { return o.provider }

// Model returns the chat model sent with each request.
func (o *OpenAIBackend) Model() string { return o.model }

// Complete sends prompt as a single user message.
func (o *OpenAIBackend) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(o.provider + ": empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicMaxTokens caps the completion length; a full ten-section pitch
// fits comfortably.
const anthropicMaxTokens = 2048

// AnthropicBackend calls the Anthropic Messages API.
type AnthropicBackend struct {
	client anthropic.Client
	model  string
}

// NewAnthropicBackend creates a backend for the Anthropic API.
func NewAnthropicBackend(apiKey, model string, timeout time.Duration) *AnthropicBackend {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	return &AnthropicBackend{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

// Provider returns "anthropic".
func (a *AnthropicBackend) Provider() string { return "anthropic" }

// Model returns the Claude model name.
func (a *AnthropicBackend) Model() string { return a.model }

// Complete sends prompt as a single user message and joins the text blocks
// of the reply.
func (a *AnthropicBackend) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(temperature),
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Content) == 0 {
		return "", errors.New("anthropic: empty content")
	}

	var b strings.Builder
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type != "text" {
			continue
		}
		b.WriteString(block.AsText().Text)
	}
	return b.String(), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

const defaultOllamaHost = "http://localhost:11434"

// OllamaBackend calls a local Ollama server. No credential is needed.
type OllamaBackend struct {
	client *api.Client
	model  string
}

// NewOllamaBackend creates a backend for the Ollama server at hostURL.
func NewOllamaBackend(hostURL, model string, timeout time.Duration) (*OllamaBackend, error) {
	if hostURL == "" {
		hostURL = defaultOllamaHost
	}
	u, err := url.Parse(hostURL)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama host %q: %w", hostURL, err)
	}
	return &OllamaBackend{
		client: api.NewClient(u, &http.Client{Timeout: timeout}),
		model:  model,
	}, nil
}

// Provider returns "ollama".
func (o *OllamaBackend) Provider() string { return "ollama" }

// Model returns the local model tag.
func (o *OllamaBackend) Model() string { return o.model }

// Complete sends prompt as a single non-streamed chat turn.
func (o *OllamaBackend) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Options: map[string]any{
			"temperature": temperature,
		},
	}

	var resp api.ChatResponse
	err := o.client.Chat(ctx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

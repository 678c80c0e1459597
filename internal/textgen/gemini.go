// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"
)

// GeminiBackend calls the Gemini API. The underlying client is created on
// first use because construction needs a context.
type GeminiBackend struct {
	apiKey     string
	model      string
	httpClient *http.Client

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiBackend creates a backend for the Gemini API. timeout bounds
// each request.
func NewGeminiBackend(apiKey, model string, timeout time.Duration) *GeminiBackend {
	return &GeminiBackend{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Provider returns "gemini".
func (g *GeminiBackend) Provider() string { return "gemini" }

// Model returns the Gemini model name.
func (g *GeminiBackend) Model() string { return g.model }

func (g *GeminiBackend) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     g.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	g.client = client
	return client, nil
}

// Complete sends prompt as a single user turn.
func (g *GeminiBackend) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}
	temp := float32(temperature)
	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("gemini: empty response")
	}
	return resp.Text(), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/pitchcrew/pkg/types"
)

// ErrUnsupportedProvider is returned for an unknown provider name.
var ErrUnsupportedProvider = errors.New("unsupported provider")

const (
	groqBaseURL    = "https://api.groq.com/openai/v1"
	defaultTimeout = 60 * time.Second
)

// defaultModels maps each provider to the model used when none is set.
var defaultModels = map[types.Provider]string{
	types.ProviderGroq:      "llama-3.1-8b-instant",
	types.ProviderOpenAI:    "gpt-4o-mini",
	types.ProviderDeepSeek:  "deepseek-chat",
	types.ProviderAnthropic: "claude-3-5-haiku-latest",
	types.ProviderGemini:    "gemini-2.0-flash",
	types.ProviderOllama:    "llama3.1",
}

// NormalizeProvider lower-cases p and applies the groq default.
func NormalizeProvider(p types.Provider) types.Provider {
	norm := types.Provider(strings.ToLower(strings.TrimSpace(string(p))))
	if norm == "" {
		return types.ProviderGroq
	}
	return norm
}

// NewBackend builds the Backend described by cfg. It returns a nil Backend
// and a nil error when the provider needs an API key and none is set: the
// resulting Client then runs in degraded mode and generates nothing.
func NewBackend(cfg types.AIConfig) (Backend, error) {
	provider := NormalizeProvider(cfg.Provider)
	model, ok := defaultModels[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
	if cfg.Model != "" {
		model = cfg.Model
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if provider != types.ProviderOllama && strings.TrimSpace(cfg.APIKey) == "" {
		return nil, nil
	}

	switch provider {
	case types.ProviderGroq:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = groqBaseURL
		}
		return NewOpenAIBackend(string(provider), cfg.APIKey, baseURL, model, timeout), nil
	case types.ProviderOpenAI:
		return NewOpenAIBackend(string(provider), cfg.APIKey, cfg.BaseURL, model, timeout), nil
	case types.ProviderDeepSeek:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return NewOpenAIBackend(string(provider), cfg.APIKey, cfg.BaseURL, model, timeout), nil
	case types.ProviderAnthropic:
		return NewAnthropicBackend(cfg.APIKey, model, timeout), nil
	case types.ProviderGemini:
		return NewGeminiBackend(cfg.APIKey, model, timeout), nil
	case types.ProviderOllama:
		b, err := NewOllamaBackend(cfg.BaseURL, model, timeout)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textgen sends single-turn prompts to a generative-text backend.
//
// The Client never fails a caller: when no backend is configured it returns
// an empty string without touching the network, and when every retry fails
// it reports the error to a Reporter and returns an empty string. Callers
// treat the empty string as "no usable output" and apply their own fallback.
package textgen

import (
	"context"
	"strings"
)

// Backend abstracts one generative-text provider so tests can supply a fake.
// Complete submits prompt as a single user turn and returns the completion.
type Backend interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)

	// Provider returns the provider name used in logs and metrics.
	Provider() string

	// Model returns the model identifier.
	Model() string
}

// fenceInfoStrings are the opening-fence language tags dropped by
// cleanOutput. Any other first line is content, e.g. "```Problem:".
var fenceInfoStrings = map[string]bool{
	"markdown":  true,
	"md":        true,
	"text":      true,
	"txt":       true,
	"plain":     true,
	"plaintext": true,
	"yaml":      true,
	"yml":       true,
	"json":      true,
}

// cleanOutput trims the completion and strips a wrapping Markdown fence.
func cleanOutput(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		if fenceInfoStrings[strings.ToLower(strings.TrimSpace(text[:nl]))] {
			text = text[nl+1:]
		}
	}
	return strings.TrimSpace(text)
}

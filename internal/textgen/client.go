// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"context"
	"errors"
	"time"

	"github.com/pdiddy/pitchcrew/internal/retry"
)

// errEmptyCompletion marks a completion that was blank after cleaning.
var errEmptyCompletion = errors.New("empty completion")

type stageKey struct{}

// WithStage labels ctx with the pipeline stage issuing the prompt. The
// label is attached to failure reports and metrics.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, stageKey{}, stage)
}

func stageFrom(ctx context.Context) string {
	if s, ok := ctx.Value(stageKey{}).(string); ok && s != "" {
		return s
	}
	return "unlabeled"
}

// Client wraps a Backend with bounded retry and failure reporting.
type Client struct {
	backend  Backend
	reporter Reporter
	metrics  *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithReporter sets the failure reporter (default: discard).
func WithReporter(r Reporter) Option {
	return func(c *Client) { c.reporter = r }
}

// WithMetrics records per-attempt metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient returns a Client for backend. A nil backend yields a client
// that always returns "" without network calls.
func NewClient(backend Backend, opts ...Option) *Client {
	c := &Client{backend: backend, reporter: NopReporter{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether a backend is configured.
func (c *Client) Available() bool {
	return c != nil && c.backend != nil
}

// Generate sends prompt with the given sampling temperature. Failed calls
// are retried up to maxRetries more times with growing delays. On
// exhaustion the failure is reported and "" is returned. An unconfigured
// client returns "" immediately and reports nothing.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float64, maxRetries int) string {
	if !c.Available() {
		return ""
	}

	stage := stageFrom(ctx)
	c.metrics.observePrompt(c.backend, stage, prompt)

	var out string
	err := retry.Do(ctx, retry.NewPolicy(maxRetries), func(ctx context.Context, attempt int) error {
		start := time.Now()
		text, err := c.backend.Complete(ctx, prompt, temperature)
		if err == nil {
			text = cleanOutput(text)
			if text == "" {
				err = errEmptyCompletion
			}
		}
		c.metrics.observeAttempt(c.backend, stage, err, time.Since(start))
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	if err != nil {
		attempts := 0
		var rerr *retry.Error
		if errors.As(err, &rerr) {
			attempts = rerr.Attempts
		}
		c.metrics.observeFailure(c.backend, stage)
		c.reporter.ReportFailure(ctx, Failure{
			Stage:    stage,
			Provider: c.backend.Provider(),
			Model:    c.backend.Model(),
			Attempts: attempts,
			Err:      err,
		})
		return ""
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package textgen

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tiktoken-go/tokenizer"
)

// Metrics records generation attempts with Prometheus collectors. A nil
// *Metrics records nothing.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	promptTokens    *prometheus.HistogramVec

	codec tokenizer.Codec
}

// NewMetrics registers the generation collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pitchcrew_generation_requests_total",
				Help: "Generation attempts by provider, model, stage, and status",
			},
			[]string{"provider", "model", "stage", "status"},
		),
		failuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pitchcrew_generation_failures_total",
				Help: "Generation calls that exhausted their retries",
			},
			[]string{"provider", "model", "stage"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pitchcrew_generation_request_duration_seconds",
				Help:    "Duration of single generation attempts",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "model", "stage"},
		),
		promptTokens: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pitchcrew_generation_prompt_tokens",
				Help:    "Estimated prompt size in tokens (GPT-4 encoding)",
				Buckets: prometheus.ExponentialBuckets(16, 2, 10),
			},
			[]string{"provider", "stage"},
		),
	}

	// Token counts are an estimate; without a codec they fall back to
	// four characters per token.
	if codec, err := tokenizer.ForModel(tokenizer.GPT4); err == nil {
		m.codec = codec
	}
	return m
}

// countTokens estimates the token count of text.
func (m *Metrics) countTokens(text string) int {
	if m.codec == nil {
		return len(text) / 4
	}
	n, err := m.codec.Count(text)
	if err != nil {
		return len(text) / 4
	}
	return n
}

func (m *Metrics) observePrompt(b Backend, stage, prompt string) {
	if m == nil {
		return
	}
	m.promptTokens.WithLabelValues(b.Provider(), stage).Observe(float64(m.countTokens(prompt)))
}

func (m *Metrics) observeAttempt(b Backend, stage string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.requestsTotal.WithLabelValues(b.Provider(), b.Model(), stage, status).Inc()
	m.requestDuration.WithLabelValues(b.Provider(), b.Model(), stage).Observe(d.Seconds())
}

func (m *Metrics) observeFailure(b Backend, stage string) {
	if m == nil {
		return
	}
	m.failuresTotal.WithLabelValues(b.Provider(), b.Model(), stage).Inc()
}

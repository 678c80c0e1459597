// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/pitchcrew/internal/pipeline"
	"github.com/pdiddy/pitchcrew/internal/runstore"
	"github.com/pdiddy/pitchcrew/internal/textgen"
	"github.com/pdiddy/pitchcrew/pkg/types"
)

// app holds the components shared by the subcommands.
type app struct {
	cfg      types.Config
	pipeline *pipeline.Pipeline
	store    *runstore.Store
	registry *prometheus.Registry
}

// newApp wires the generation client, pipeline and run store from cfg.
// A provider without a key disables generation; every stage then falls
// back to its built-in output.
func newApp(cfg types.Config) (*app, error) {
	backend, err := textgen.NewBackend(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("configuring %s backend: %w", cfg.AI.Provider, err)
	}
	if backend == nil {
		slog.Warn("no API key configured, using built-in fallbacks", slog.String("provider", string(cfg.AI.Provider)))
	}

	registry := prometheus.NewRegistry()
	client := textgen.NewClient(backend,
		textgen.WithReporter(textgen.LogReporter{Logger: slog.Default()}),
		textgen.WithMetrics(textgen.NewMetrics(registry)),
	)

	p := pipeline.New(client, pipeline.Options{
		MaxRetries: cfg.AI.MaxRetries,
		Strategy:   cfg.Pipeline.Strategy,
		Logger:     slog.Default(),
	})

	store, err := runstore.Open(cfg.Store)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, pipeline: p, store: store, registry: registry}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// session creates a run for idea and binds it to the pipeline.
func (a *app) session(ctx context.Context, idea string) (*pipeline.Session, error) {
	run, err := a.store.Create(ctx, idea)
	if err != nil {
		return nil, err
	}
	return pipeline.NewSession(a.pipeline, run), nil
}

// save stores the session's run. A failure is logged, not returned: the
// run output has already been produced.
func (a *app) save(ctx context.Context, sess *pipeline.Session) {
	if err := a.store.Save(ctx, sess.State); err != nil {
		slog.WarnContext(ctx, "could not save run", slog.String("id", sess.State.ID), slog.String("error", err.Error()))
	}
}

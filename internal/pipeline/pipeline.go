// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline generates a startup pitch through four sequential stages:
// name generation, market research, draft pitch and editorial polish.
//
// Every stage has a deterministic fallback, so a run always produces usable
// output even when text generation is unavailable. The Pipeline holds no
// per-run state; Session applies results to a types.PipelineRun.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/pitchcrew/internal/textgen"
	"github.com/pdiddy/pitchcrew/pkg/types"
)

// NoResearch is the research text used when generation produces nothing.
const NoResearch = "No research available."

// Sampling temperatures per stage.
const (
	namesTemperature    = 0.7
	researchTemperature = 0.5
	draftTemperature    = 0.5
	polishTemperature   = 0.3
)

const defaultMaxRetries = 2

var (
	// ErrEmptyIdea is returned when a run is requested for a blank idea.
	ErrEmptyIdea = errors.New("idea is empty")

	// ErrEmptyName is returned when a selected name is blank after cleaning.
	ErrEmptyName = errors.New("name is empty")
)

// Generator produces a completion for a prompt, or "" when nothing usable
// could be generated. *textgen.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64, maxRetries int) string
}

// Result holds the outputs of one pipeline call. Fields of stages that did
// not run are empty.
type Result struct {
	Names         []string           `json:"names,omitempty" yaml:"names,omitempty"`
	Research      string             `json:"research,omitempty" yaml:"research,omitempty"`
	DraftPitch    string             `json:"draft_pitch,omitempty" yaml:"draft_pitch,omitempty"`
	PolishedPitch string             `json:"polished_pitch,omitempty" yaml:"polished_pitch,omitempty"`
	Events        []types.StageEvent `json:"events,omitempty" yaml:"events,omitempty"`
}

// Options configures a Pipeline.
type Options struct {
	// MaxRetries is passed to every generation call. Zero disables
	// retries; a negative value selects the default of 2.
	MaxRetries int

	// Strategy selects sequential stages or the crew chain for full and
	// names-only runs.
	Strategy types.Strategy

	// Logger receives crew fallback notices. Nil discards them.
	Logger *slog.Logger

	// Now stamps stage events. Nil uses time.Now.
	Now func() time.Time
}

// Pipeline runs the pitch stages against a Generator.
type Pipeline struct {
	gen        Generator
	crew       *Crew
	maxRetries int
	logger     *slog.Logger
	now        func() time.Time
}

// New returns a Pipeline. When opts.Strategy is crew and the crew cannot be
// initialized, the Pipeline runs the sequential stages only.
func New(gen Generator, opts Options) *Pipeline {
	p := &Pipeline{
		gen:        gen,
		maxRetries: opts.MaxRetries,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if p.maxRetries < 0 {
		p.maxRetries = defaultMaxRetries
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if p.now == nil {
		p.now = time.Now
	}

	if opts.Strategy == types.StrategyCrew {
		crew, err := NewCrew(gen, DefaultAgents, p.maxRetries)
		if err != nil {
			p.logger.Warn("crew unavailable, using sequential stages", slog.String("error", err.Error()))
		} else {
			p.crew = crew
		}
	}
	return p
}

// Strategy reports the orchestration strategy in effect.
func (p *Pipeline) Strategy() types.Strategy {
	if p.crew != nil {
		return types.StrategyCrew
	}
	return types.StrategySequential
}

func normalizeIdea(idea string) (string, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return "", ErrEmptyIdea
	}
	return idea, nil
}

// RunNames executes only the name stage.
func (p *Pipeline) RunNames(ctx context.Context, idea string) (Result, error) {
	idea, err := normalizeIdea(idea)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if p.crew != nil {
		out, err := p.crew.Kickoff(ctx, CrewInput{Idea: idea, Until: RoleNameGenerator})
		if err != nil {
			p.logger.WarnContext(ctx, "crew names failed, falling back to stage pipeline", slog.String("error", err.Error()))
		}
		res = p.adoptCrew(normalizeCrewOutput(out))
	}
	if len(res.Names) == 0 {
		names, fb := p.names(ctx, idea)
		res.Names = names
		res.Events = append(res.Events, p.event(types.StageNames, types.StrategySequential, fb))
	}
	return res, nil
}

// RunFull executes all four stages in order. Draft and polish run without
// a chosen name.
func (p *Pipeline) RunFull(ctx context.Context, idea string) (Result, error) {
	idea, err := normalizeIdea(idea)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if p.crew != nil {
		out, err := p.crew.Kickoff(ctx, CrewInput{Idea: idea, Until: RoleEditor})
		if err != nil {
			p.logger.WarnContext(ctx, "crew run incomplete, falling back to stage pipeline", slog.String("error", err.Error()))
		}
		res = p.adoptCrew(normalizeCrewOutput(out))
	}

	// Fill whatever the crew did not produce.
	if len(res.Names) == 0 {
		names, fb := p.names(ctx, idea)
		res.Names = names
		res.Events = append(res.Events, p.event(types.StageNames, types.StrategySequential, fb))
	}
	if res.Research == "" {
		research, fb := p.research(ctx, idea)
		res.Research = research
		res.Events = append(res.Events, p.event(types.StageResearch, types.StrategySequential, fb))
	}
	if res.DraftPitch == "" {
		draft, fb := p.draft(ctx, idea, "")
		res.DraftPitch = draft
		res.PolishedPitch = ""
		res.Events = append(res.Events, p.event(types.StageDraft, types.StrategySequential, fb))
	}
	if res.PolishedPitch == "" {
		polished, fb := p.polish(ctx, res.DraftPitch)
		res.PolishedPitch = polished
		res.Events = append(res.Events, p.event(types.StagePolish, types.StrategySequential, fb))
	}
	return res, nil
}

// SelectName re-runs draft and polish with name bound. Names and research
// are left empty in the result. A leading list ordinal such as "2. " is
// removed from name first.
func (p *Pipeline) SelectName(ctx context.Context, idea, name string) (Result, error) {
	idea, err := normalizeIdea(idea)
	if err != nil {
		return Result{}, err
	}
	name = CleanName(name)
	if name == "" {
		return Result{}, fmt.Errorf("selecting name: %w", ErrEmptyName)
	}

	var res Result
	draft, fb := p.draft(ctx, idea, name)
	res.DraftPitch = draft
	res.Events = append(res.Events, p.event(types.StageDraft, types.StrategySequential, fb))

	polished, fb := p.polish(ctx, draft)
	res.PolishedPitch = polished
	res.Events = append(res.Events, p.event(types.StagePolish, types.StrategySequential, fb))
	return res, nil
}

// adoptCrew records events for every field the crew produced.
func (p *Pipeline) adoptCrew(res Result) Result {
	if len(res.Names) > 0 {
		res.Events = append(res.Events, p.event(types.StageNames, types.StrategyCrew, false))
	}
	if res.Research != "" {
		res.Events = append(res.Events, p.event(types.StageResearch, types.StrategyCrew, false))
	}
	if res.DraftPitch != "" {
		res.Events = append(res.Events, p.event(types.StageDraft, types.StrategyCrew, false))
	}
	if res.PolishedPitch != "" {
		res.Events = append(res.Events, p.event(types.StagePolish, types.StrategyCrew, false))
	}
	return res
}

func (p *Pipeline) event(stage types.Stage, strategy types.Strategy, fallback bool) types.StageEvent {
	return types.StageEvent{Stage: stage, Strategy: strategy, Fallback: fallback, At: p.now()}
}

func (p *Pipeline) generate(ctx context.Context, stage types.Stage, prompt string, temperature float64) string {
	if p.gen == nil {
		return ""
	}
	return strings.TrimSpace(p.gen.Generate(textgen.WithStage(ctx, string(stage)), prompt, temperature, p.maxRetries))
}

// --- stages ---
// Each stage returns its output and whether the fallback was used.

func (p *Pipeline) names(ctx context.Context, idea string) ([]string, bool) {
	names := ParseNames(p.generate(ctx, types.StageNames, namesPrompt(idea), namesTemperature))
	if len(names) == 0 {
		return fallbackNames(), true
	}
	return names, false
}

func (p *Pipeline) research(ctx context.Context, idea string) (string, bool) {
	out := p.generate(ctx, types.StageResearch, researchPrompt(idea), researchTemperature)
	if out == "" {
		return NoResearch, true
	}
	return out, false
}

func (p *Pipeline) draft(ctx context.Context, idea, name string) (string, bool) {
	out := p.generate(ctx, types.StageDraft, draftPrompt(idea, name), draftTemperature)
	if out == "" {
		return FallbackDraft(idea), true
	}
	return out, false
}

func (p *Pipeline) polish(ctx context.Context, draft string) (string, bool) {
	out := p.generate(ctx, types.StagePolish, polishPrompt(draft), polishTemperature)
	if out == "" {
		return strings.TrimSpace(draft), true
	}
	return out, false
}

// FallbackDraft is the two-section stub used when drafting produces nothing.
func FallbackDraft(idea string) string {
	return fmt.Sprintf("Executive Summary\nA short pitch for: %s\nProblem\nTBD\nSolution\nTBD", idea)
}

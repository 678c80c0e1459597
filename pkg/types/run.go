package types

import "time"

// Stage names one step of the pitch pipeline.
type Stage string

const (
	StageNames    Stage = "names"
	StageResearch Stage = "research"
	StageDraft    Stage = "draft"
	StagePolish   Stage = "polish"
)

// StageEvent records the completion of one stage within a run.
type StageEvent struct {
	// Stage is the stage that completed.
	Stage Stage `json:"stage" yaml:"stage"`

	// Strategy is the orchestration strategy that produced the output.
	Strategy Strategy `json:"strategy" yaml:"strategy"`

	// Fallback reports whether the built-in fallback value was used
	// because generation produced nothing.
	Fallback bool `json:"fallback" yaml:"fallback"`

	// At is when the stage completed.
	At time.Time `json:"at" yaml:"at"`
}

// PipelineRun is the per-session record of an idea and its stage outputs.
type PipelineRun struct {
	// ID identifies the session.
	ID string `json:"id" yaml:"id"`

	// Idea is the free-text startup idea.
	Idea string `json:"idea" yaml:"idea"`

	// SelectedName is the brand name the caller committed to, if any.
	SelectedName string `json:"selected_name,omitempty" yaml:"selected_name,omitempty"`

	// Names lists the generated name candidates (at most 6).
	Names []string `json:"names" yaml:"names"`

	// Research is the market-research summary.
	Research string `json:"research" yaml:"research"`

	// DraftPitch is the pitch before editorial polish.
	DraftPitch string `json:"draft_pitch" yaml:"draft_pitch"`

	// PolishedPitch is the final pitch text.
	PolishedPitch string `json:"polished_pitch" yaml:"polished_pitch"`

	// RunsCount counts full runs executed in this session.
	RunsCount int `json:"runs_count" yaml:"runs_count"`

	// History lists stage completions in order.
	History []StageEvent `json:"history,omitempty" yaml:"history,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Exportable reports whether the run has a selected name and a polished
// pitch to render.
func (r *PipelineRun) Exportable() bool {
	return r.SelectedName != "" && r.PolishedPitch != ""
}

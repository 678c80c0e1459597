// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"time"

	"github.com/pdiddy/pitchcrew/pkg/types"
)

// Session applies pipeline results to its State, one PipelineRun. A Session is not
// safe for concurrent use; each caller session owns its own run.
type Session struct {
	State *types.PipelineRun

	p   *Pipeline
	now func() time.Time
}

// NewSession binds run to p.
func NewSession(p *Pipeline, run *types.PipelineRun) *Session {
	return &Session{State: run, p: p, now: p.now}
}

// GenerateNames runs the name stage and clears any selected name. Research
// and pitch text are left as they are.
func (s *Session) GenerateNames(ctx context.Context) error {
	res, err := s.p.RunNames(ctx, s.State.Idea)
	if err != nil {
		return err
	}
	s.State.Names = res.Names
	s.State.SelectedName = ""
	s.record(res)
	return nil
}

// RegenerateNames runs the name stage again, clears the selected name and
// drops the draft and polished pitch written for it.
func (s *Session) RegenerateNames(ctx context.Context) error {
	if err := s.GenerateNames(ctx); err != nil {
		return err
	}
	s.State.DraftPitch = ""
	s.State.PolishedPitch = ""
	return nil
}

// Run executes a full run. The new draft carries no name, so any earlier
// selection is cleared.
func (s *Session) Run(ctx context.Context) error {
	res, err := s.p.RunFull(ctx, s.State.Idea)
	if err != nil {
		return err
	}
	s.State.Names = res.Names
	s.State.Research = res.Research
	s.State.DraftPitch = res.DraftPitch
	s.State.PolishedPitch = res.PolishedPitch
	s.State.SelectedName = ""
	s.State.RunsCount++
	s.record(res)
	return nil
}

// Select commits to name and rewrites the draft and polished pitch with it.
// Names and research are kept.
func (s *Session) Select(ctx context.Context, name string) error {
	res, err := s.p.SelectName(ctx, s.State.Idea, name)
	if err != nil {
		return err
	}
	s.State.SelectedName = CleanName(name)
	s.State.DraftPitch = res.DraftPitch
	s.State.PolishedPitch = res.PolishedPitch
	s.record(res)
	return nil
}

// Clear drops every stage output and the selection. The idea and history
// are kept.
func (s *Session) Clear() {
	s.State.Names = nil
	s.State.Research = ""
	s.State.DraftPitch = ""
	s.State.PolishedPitch = ""
	s.State.SelectedName = ""
	s.State.UpdatedAt = s.now()
}

func (s *Session) record(res Result) {
	s.State.History = append(s.State.History, res.Events...)
	s.State.UpdatedAt = s.now()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pitchcrew/pkg/types"
)

func newTestSession(gen Generator) *Session {
	p := New(gen, Options{Now: fixedNow})
	return NewSession(p, &types.PipelineRun{ID: "s1", Idea: rooftopIdea})
}

func TestSession_NamesOnlyLeavesOtherStages(t *testing.T) {
	s := newTestSession(&fakeGen{rules: allRules()})
	s.State.Research = "earlier research"
	s.State.DraftPitch = "earlier draft"
	s.State.SelectedName = "Old"

	require.NoError(t, s.GenerateNames(context.Background()))

	assert.Equal(t, []string{"Acme", "Zenith"}, s.State.Names)
	assert.Equal(t, "earlier research", s.State.Research)
	assert.Equal(t, "earlier draft", s.State.DraftPitch)
	assert.Empty(t, s.State.SelectedName)
	assert.Equal(t, fixedNow(), s.State.UpdatedAt)
	require.Len(t, s.State.History, 1)
	assert.Equal(t, types.StageNames, s.State.History[0].Stage)
}

func TestSession_RunThenSelect(t *testing.T) {
	gen := &fakeGen{rules: allRules()}
	s := newTestSession(gen)
	ctx := context.Background()

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, 1, s.State.RunsCount)
	assert.False(t, s.State.Exportable())

	require.NoError(t, s.Select(ctx, "1. Acme"))
	assert.Equal(t, "Acme", s.State.SelectedName)
	assert.Equal(t, []string{"Acme", "Zenith"}, s.State.Names, "names untouched")
	assert.Equal(t, researchRule.reply, s.State.Research, "research untouched")
	assert.Equal(t, polishRule.reply, s.State.PolishedPitch)
	assert.True(t, s.State.Exportable())

	assert.Contains(t, gen.prompts[len(gen.prompts)-2], `Use the name "Acme".`)
	// 4 stages of the run + draft and polish of the selection.
	assert.Len(t, s.State.History, 6)
}

func TestSession_RegenerateNamesClearsSelection(t *testing.T) {
	s := newTestSession(&fakeGen{rules: allRules()})
	ctx := context.Background()

	require.NoError(t, s.Run(ctx))
	require.NoError(t, s.Select(ctx, "Zenith"))
	require.NoError(t, s.RegenerateNames(ctx))

	assert.Empty(t, s.State.SelectedName)
	assert.Empty(t, s.State.DraftPitch)
	assert.Empty(t, s.State.PolishedPitch)
	assert.Equal(t, researchRule.reply, s.State.Research)
	assert.Equal(t, []string{"Acme", "Zenith"}, s.State.Names)
}

func TestSession_FullRunClearsSelection(t *testing.T) {
	s := newTestSession(&fakeGen{rules: allRules()})
	ctx := context.Background()

	require.NoError(t, s.Select(ctx, "Zenith"))
	require.NoError(t, s.Run(ctx))
	assert.Empty(t, s.State.SelectedName)
	assert.Equal(t, 1, s.State.RunsCount)
}

func TestSession_Clear(t *testing.T) {
	s := newTestSession(&fakeGen{rules: allRules()})
	require.NoError(t, s.Run(context.Background()))
	history := len(s.State.History)

	s.Clear()
	assert.Nil(t, s.State.Names)
	assert.Empty(t, s.State.Research)
	assert.Empty(t, s.State.DraftPitch)
	assert.Empty(t, s.State.PolishedPitch)
	assert.Equal(t, rooftopIdea, s.State.Idea)
	assert.Len(t, s.State.History, history)
}

func TestSession_EmptyIdea(t *testing.T) {
	p := New(&fakeGen{}, Options{})
	s := NewSession(p, &types.PipelineRun{Idea: " "})
	assert.ErrorIs(t, s.Run(context.Background()), ErrEmptyIdea)
	assert.ErrorIs(t, s.GenerateNames(context.Background()), ErrEmptyIdea)
}

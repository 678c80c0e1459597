// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pitchcrew/internal/retry"
	"github.com/pdiddy/pitchcrew/internal/textgen"
	"github.com/pdiddy/pitchcrew/pkg/types"
)

const rooftopIdea = "A platform that rents unused rooftops for events"

func TestMain(m *testing.M) {
	retry.RetryBaseDelay = time.Millisecond
	retry.RetryStep = time.Millisecond
	os.Exit(m.Run())
}

// --- fakes ---

// rule answers prompts containing match with reply. The first matching
// rule wins.
type rule struct {
	match string
	reply string
}

type fakeGen struct {
	rules   []rule
	prompts []string
	temps   []float64
	retries []int
}

func (f *fakeGen) Generate(_ context.Context, prompt string, temperature float64, maxRetries int) string {
	f.prompts = append(f.prompts, prompt)
	f.temps = append(f.temps, temperature)
	f.retries = append(f.retries, maxRetries)
	for _, r := range f.rules {
		if strings.Contains(prompt, r.match) {
			return r.reply
		}
	}
	return ""
}

// failingBackend fails every call.
type failingBackend struct{ calls int }

func (f *failingBackend) Complete(context.Context, string, float64) (string, error) {
	f.calls++
	return "", errors.New("503 service unavailable")
}
func (f *failingBackend) Provider() string { return "fake" }
func (f *failingBackend) Model() string    { return "fake" }

var (
	namesRule    = rule{match: "brandable startup names", reply: "1. Acme\nAcme\n- Acme\nZenith"}
	researchRule = rule{match: "market research summary", reply: "Competitors: Peerspace, Splacer."}
	draftRule    = rule{match: "investor-ready pitch with labeled sections", reply: "Executive Summary: Rooftops for rent.\nProblem: idle roofs."}
	polishRule   = rule{match: "Polish the following pitch", reply: "Executive Summary: Rent rooftops.\nProblem: Roofs sit idle."}
)

func allRules() []rule { return []rule{namesRule, researchRule, draftRule, polishRule} }

func fixedNow() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

// --- ParseNames ---

func TestParseNames(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "dedupe after stripping markup", raw: "1. Acme\nAcme\n- Acme\nZenith", want: []string{"Acme", "Zenith"}},
		{name: "CRLF line endings", raw: "1. Acme\r\nAcme\r\n- Acme\r\nZenith\r\n", want: []string{"Acme", "Zenith"}},
		{name: "surrounding unicode space", raw: "\u00a0Nimbus\u00a0\n\vLoft", want: []string{"Nimbus", "Loft"}},
		{name: "case sensitive", raw: "Acme\nACME\nacme", want: []string{"Acme", "ACME", "acme"}},
		{name: "bullets and blank lines", raw: "• SkyPads\n\n  * RoofRent  \n-TopVenue.\n", want: []string{"SkyPads", "RoofRent", "TopVenue"}},
		{name: "parenthesized ordinals", raw: "1) Nimbus\n2) Loft", want: []string{"Nimbus", "Loft"}},
		{name: "digits inside names kept", raw: "3D Venues\n360 Roofs", want: []string{"3D Venues", "360 Roofs"}},
		{name: "truncated to six", raw: "A\nB\nC\nD\nE\nF\nG\nH", want: []string{"A", "B", "C", "D", "E", "F"}},
		{name: "nothing usable", raw: " \n - \n.", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNames(tt.raw))
		})
	}
}

// --- generation disabled ---

func TestPipeline_GenerationDisabled(t *testing.T) {
	p := New(textgen.NewClient(nil), Options{Now: fixedNow})
	ctx := context.Background()

	names, err := p.RunNames(ctx, rooftopIdea)
	require.NoError(t, err)
	assert.Equal(t, FallbackNames, names.Names)
	assert.Empty(t, names.Research)
	assert.Empty(t, names.DraftPitch)

	full, err := p.RunFull(ctx, rooftopIdea)
	require.NoError(t, err)
	assert.Equal(t, FallbackNames, full.Names)
	assert.Equal(t, NoResearch, full.Research)
	assert.Contains(t, full.DraftPitch, "Executive Summary")
	assert.Contains(t, full.DraftPitch, rooftopIdea)
	assert.Equal(t, full.DraftPitch, full.PolishedPitch)

	require.Len(t, full.Events, 4)
	for _, ev := range full.Events {
		assert.True(t, ev.Fallback, "stage %s", ev.Stage)
		assert.Equal(t, types.StrategySequential, ev.Strategy)
		assert.Equal(t, fixedNow(), ev.At)
	}
}

func TestPipeline_FallbackNamesAreCopied(t *testing.T) {
	p := New(textgen.NewClient(nil), Options{})
	res, err := p.RunNames(context.Background(), rooftopIdea)
	require.NoError(t, err)
	res.Names[0] = "Mutated"
	assert.Equal(t, "SkyPads", FallbackNames[0])
}

// --- every call fails ---

func TestPipeline_FailingClientUsesFallbacks(t *testing.T) {
	backend := &failingBackend{}
	p := New(textgen.NewClient(backend), Options{MaxRetries: 1})

	res, err := p.RunFull(context.Background(), rooftopIdea)
	require.NoError(t, err)

	assert.Equal(t, FallbackNames, res.Names)
	assert.Equal(t, "No research available.", res.Research)
	assert.Equal(t, "Executive Summary\nA short pitch for: "+rooftopIdea+"\nProblem\nTBD\nSolution\nTBD", res.DraftPitch)
	assert.Equal(t, res.DraftPitch, res.PolishedPitch)
	// Four stages, two attempts each.
	assert.Equal(t, 8, backend.calls)
}

// --- generation available ---

func TestPipeline_RunFull(t *testing.T) {
	gen := &fakeGen{rules: allRules()}
	p := New(gen, Options{})

	res, err := p.RunFull(context.Background(), "  "+rooftopIdea+"  ")
	require.NoError(t, err)

	assert.Equal(t, []string{"Acme", "Zenith"}, res.Names)
	assert.Equal(t, researchRule.reply, res.Research)
	assert.Equal(t, draftRule.reply, res.DraftPitch)
	assert.Equal(t, polishRule.reply, res.PolishedPitch)

	require.Len(t, gen.prompts, 4)
	assert.Equal(t, []float64{0.7, 0.5, 0.5, 0.3}, gen.temps)
	assert.Contains(t, gen.prompts[0], `for: "`+rooftopIdea+`"`)
	assert.Contains(t, gen.prompts[2], "Do not use a name.")
	assert.Contains(t, gen.prompts[2], "Idea: "+rooftopIdea)
	for _, h := range []string{"Executive Summary", "Unique Value Proposition", "30-second Investor Pitch"} {
		assert.Contains(t, gen.prompts[2], h)
	}
	assert.Contains(t, gen.prompts[3], draftRule.reply, "polish sees the draft")

	for _, ev := range res.Events {
		assert.False(t, ev.Fallback)
	}
}

func TestPipeline_PolishFallbackPassesDraftThrough(t *testing.T) {
	gen := &fakeGen{rules: []rule{namesRule, researchRule, draftRule}}
	p := New(gen, Options{})

	res, err := p.RunFull(context.Background(), rooftopIdea)
	require.NoError(t, err)
	assert.Equal(t, draftRule.reply, res.PolishedPitch)
	require.Len(t, res.Events, 4)
	assert.True(t, res.Events[3].Fallback)
}

func TestPipeline_UnusableNamesFallBack(t *testing.T) {
	gen := &fakeGen{rules: []rule{{match: "brandable", reply: "-\n.\n"}}}
	p := New(gen, Options{})

	res, err := p.RunNames(context.Background(), rooftopIdea)
	require.NoError(t, err)
	assert.Equal(t, FallbackNames, res.Names)
}

func TestPipeline_SelectName(t *testing.T) {
	gen := &fakeGen{rules: allRules()}
	p := New(gen, Options{})

	res, err := p.SelectName(context.Background(), rooftopIdea, "2. Zenith")
	require.NoError(t, err)

	assert.Empty(t, res.Names)
	assert.Empty(t, res.Research)
	assert.Equal(t, draftRule.reply, res.DraftPitch)
	assert.Equal(t, polishRule.reply, res.PolishedPitch)

	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], `Use the name "Zenith".`)
	assert.NotContains(t, gen.prompts[0], "Do not use a name.")
}

func TestPipeline_Errors(t *testing.T) {
	p := New(&fakeGen{}, Options{})
	ctx := context.Background()

	_, err := p.RunNames(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyIdea)
	_, err = p.RunFull(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyIdea)
	_, err = p.SelectName(ctx, "", "Acme")
	assert.ErrorIs(t, err, ErrEmptyIdea)
	_, err = p.SelectName(ctx, rooftopIdea, " - ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestPipeline_MaxRetries(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		want       int
	}{
		{name: "zero disables retries", maxRetries: 0, want: 0},
		{name: "explicit value", maxRetries: 4, want: 4},
		{name: "negative selects default", maxRetries: -1, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGen{rules: allRules()}
			p := New(gen, Options{MaxRetries: tt.maxRetries})

			_, err := p.RunNames(context.Background(), rooftopIdea)
			require.NoError(t, err)
			assert.Equal(t, []int{tt.want}, gen.retries)
		})
	}
}

func TestPipeline_ZeroRetriesMakesOneAttemptPerStage(t *testing.T) {
	backend := &failingBackend{}
	p := New(textgen.NewClient(backend), Options{MaxRetries: 0})

	_, err := p.RunFull(context.Background(), rooftopIdea)
	require.NoError(t, err)
	assert.Equal(t, 4, backend.calls)
}

// --- crew strategy ---

func TestPipeline_CrewStrategy(t *testing.T) {
	gen := &fakeGen{rules: allRules()}
	p := New(gen, Options{Strategy: types.StrategyCrew})
	require.Equal(t, types.StrategyCrew, p.Strategy())

	res, err := p.RunFull(context.Background(), rooftopIdea)
	require.NoError(t, err)

	assert.Equal(t, []string{"Acme", "Zenith"}, res.Names)
	assert.Equal(t, researchRule.reply, res.Research)
	assert.Equal(t, draftRule.reply, res.DraftPitch)
	assert.Equal(t, polishRule.reply, res.PolishedPitch)

	require.Len(t, gen.prompts, 4, "crew covers every stage")
	assert.Contains(t, gen.prompts[0], "You are the Name Generator")
	assert.Contains(t, gen.prompts[2], "You are the Pitch Writer")
	assert.Contains(t, gen.prompts[2], researchRule.reply, "pitch writer sees the research")
	for _, ev := range res.Events {
		assert.Equal(t, types.StrategyCrew, ev.Strategy)
	}
}

func TestPipeline_CrewFailureFallsBackPerField(t *testing.T) {
	gen := &fakeGen{rules: append([]rule{{match: "You are the Researcher", reply: ""}}, allRules()...)}
	p := New(gen, Options{Strategy: types.StrategyCrew})

	res, err := p.RunFull(context.Background(), rooftopIdea)
	require.NoError(t, err)

	assert.Equal(t, []string{"Acme", "Zenith"}, res.Names)
	assert.Equal(t, researchRule.reply, res.Research)
	assert.Equal(t, draftRule.reply, res.DraftPitch)
	assert.Equal(t, polishRule.reply, res.PolishedPitch)

	// Crew: names, researcher (empty). Stages: research, draft, polish.
	require.Len(t, gen.prompts, 5)
	require.Len(t, res.Events, 4)
	assert.Equal(t, types.StrategyCrew, res.Events[0].Strategy)
	for _, ev := range res.Events[1:] {
		assert.Equal(t, types.StrategySequential, ev.Strategy)
	}
}

func TestPipeline_CrewNamesOnly(t *testing.T) {
	gen := &fakeGen{rules: allRules()}
	p := New(gen, Options{Strategy: types.StrategyCrew})

	res, err := p.RunNames(context.Background(), rooftopIdea)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Zenith"}, res.Names)
	assert.Len(t, gen.prompts, 1)
}

func TestPipeline_CrewWithoutGeneratorIsSequential(t *testing.T) {
	p := New(nil, Options{Strategy: types.StrategyCrew})
	assert.Equal(t, types.StrategySequential, p.Strategy())

	res, err := p.RunFull(context.Background(), rooftopIdea)
	require.NoError(t, err)
	assert.Equal(t, NoResearch, res.Research)
}

func TestNewCrew_Validation(t *testing.T) {
	_, err := NewCrew(&fakeGen{}, nil, 1)
	assert.Error(t, err)
	_, err = NewCrew(&fakeGen{}, []Agent{{Role: "Accountant"}}, 1)
	assert.ErrorContains(t, err, "unknown role")
}

func TestNormalizeCrewOutput(t *testing.T) {
	res := normalizeCrewOutput(crewOutput{
		RoleNameGenerator: "1. Acme\n2. Zenith",
		RoleEditor:        "  polished  ",
	})
	assert.Equal(t, []string{"Acme", "Zenith"}, res.Names)
	assert.Empty(t, res.Research)
	assert.Empty(t, res.DraftPitch)
	assert.Equal(t, "polished", res.PolishedPitch)
}

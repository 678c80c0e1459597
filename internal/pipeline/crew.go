// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/pitchcrew/internal/textgen"
	"github.com/pdiddy/pitchcrew/pkg/types"
)

// Role names one member of the crew.
type Role string

// Crew roles in execution order. Each role consumes the output of the
// roles before it.
const (
	// RoleNameGenerator proposes candidate names.
	RoleNameGenerator Role = "Name Generator"
	// RoleResearcher summarizes the market and competitors.
	RoleResearcher Role = "Researcher"
	// RolePitchWriter drafts the sectioned pitch.
	RolePitchWriter Role = "Pitch Writer"
	// RoleEditor polishes the draft.
	RoleEditor Role = "Editor"
)

// roleStages maps each role to the stage it stands in for.
var roleStages = map[Role]types.Stage{
	RoleNameGenerator: types.StageNames,
	RoleResearcher:    types.StageResearch,
	RolePitchWriter:   types.StageDraft,
	RoleEditor:        types.StagePolish,
}

// Agent is a crew member: a role, its goal and its sampling temperature.
type Agent struct {
	Role        Role
	Goal        string
	Temperature float64
}

// DefaultAgents is the crew in execution order.
var DefaultAgents = []Agent{
	{Role: RoleNameGenerator, Goal: "Produce 6 short brandable names for the idea", Temperature: namesTemperature},
	{Role: RoleResearcher, Goal: "Provide concise market research summary", Temperature: researchTemperature},
	{Role: RolePitchWriter, Goal: "Write investor-ready pitch with labeled sections", Temperature: draftTemperature},
	{Role: RoleEditor, Goal: "Polish pitch for clarity and investor tone", Temperature: polishTemperature},
}

// CrewInput is the kickoff input of a crew run.
type CrewInput struct {
	Idea string
	Name string

	// Until is the last role to run; empty runs the whole crew.
	Until Role
}

// crewOutput holds the raw reply of every role that produced one.
type crewOutput map[Role]string

// Crew runs its agents as a strictly sequential chain. Each agent sees the
// outputs of the agents before it.
type Crew struct {
	gen        Generator
	agents     []Agent
	maxRetries int
}

// NewCrew validates the agent list and returns a Crew.
func NewCrew(gen Generator, agents []Agent, maxRetries int) (*Crew, error) {
	if gen == nil {
		return nil, errors.New("crew: generator is required")
	}
	if len(agents) == 0 {
		return nil, errors.New("crew: no agents")
	}
	for _, a := range agents {
		if _, ok := roleStages[a.Role]; !ok {
			return nil, fmt.Errorf("crew: unknown role %q", a.Role)
		}
	}
	return &Crew{gen: gen, agents: agents, maxRetries: maxRetries}, nil
}

// Kickoff runs the agents in order up to in.Until. It stops at the first
// agent that produces nothing and returns the outputs gathered so far with
// an error naming that agent.
func (c *Crew) Kickoff(ctx context.Context, in CrewInput) (crewOutput, error) {
	out := make(crewOutput)
	for _, a := range c.agents {
		task := c.task(a.Role, in, out)
		prompt := fmt.Sprintf("You are the %s of a startup crew. Your goal: %s.\n\n%s", a.Role, a.Goal, task)

		stageCtx := textgen.WithStage(ctx, "crew_"+string(roleStages[a.Role]))
		reply := strings.TrimSpace(c.gen.Generate(stageCtx, prompt, a.Temperature, c.maxRetries))
		if reply == "" {
			return out, fmt.Errorf("crew: %s produced no output", a.Role)
		}
		out[a.Role] = reply

		if a.Role == in.Until {
			break
		}
	}
	return out, nil
}

func (c *Crew) task(role Role, in CrewInput, prev crewOutput) string {
	switch role {
	case RoleNameGenerator:
		return namesPrompt(in.Idea)
	case RoleResearcher:
		return researchPrompt(in.Idea)
	case RolePitchWriter:
		task := draftPrompt(in.Idea, in.Name)
		if research := prev[RoleResearcher]; research != "" {
			task += "\nMarket research:\n" + research + "\n"
		}
		return task
	case RoleEditor:
		return polishPrompt(prev[RolePitchWriter])
	}
	return ""
}

// normalizeCrewOutput maps raw crew replies onto a Result. It is the only
// place that knows how crew outputs are keyed.
func normalizeCrewOutput(out crewOutput) Result {
	return Result{
		Names:         ParseNames(out[RoleNameGenerator]),
		Research:      strings.TrimSpace(out[RoleResearcher]),
		DraftPitch:    strings.TrimSpace(out[RolePitchWriter]),
		PolishedPitch: strings.TrimSpace(out[RoleEditor]),
	}
}

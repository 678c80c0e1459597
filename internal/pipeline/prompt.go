// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/pitchcrew/internal/sections"
)

var namesPromptTmpl = template.Must(template.New("names").Parse(
	`Generate 6 unique short brandable startup names for: "{{.Idea}}". One per line.`))

var researchPromptTmpl = template.Must(template.New("research").Parse(
	`Provide concise market research summary for: "{{.Idea}}". Mention top competitors.`))

// draftPromptTmpl lists every recognized heading so the Section Extractor
// can split the reply.
var draftPromptTmpl = template.Must(template.New("draft").Parse(`
You are a professional startup strategist. {{if .Name}}Use the name "{{.Name}}".{{else}}Do not use a name.{{end}}
Write an investor-ready pitch with labeled sections:
{{range .Headings}}{{.}}
{{end}}
Idea: {{.Idea}}
`))

var polishPromptTmpl = template.Must(template.New("polish").Parse(
	"Polish the following pitch for clarity and investor tone. Keep headings.\n\n{{.Draft}}"))

type promptData struct {
	Idea     string
	Name     string
	Draft    string
	Headings []string
}

func namesPrompt(idea string) string {
	return mustRender(namesPromptTmpl, promptData{Idea: idea})
}

func researchPrompt(idea string) string {
	return mustRender(researchPromptTmpl, promptData{Idea: idea})
}

func draftPrompt(idea, name string) string {
	return mustRender(draftPromptTmpl, promptData{Idea: idea, Name: name, Headings: sections.Vocabulary})
}

func polishPrompt(draft string) string {
	return mustRender(polishPromptTmpl, promptData{Draft: draft})
}

// mustRender executes tmpl. The templates are fixed and only reference
// fields of promptData, so execution cannot fail at run time.
func mustRender(tmpl *template.Template, data promptData) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		panic("pipeline: rendering " + tmpl.Name() + " prompt: " + err.Error())
	}
	return buf.String()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"

	"github.com/pdiddy/pitchcrew/internal/sections"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; max-width: 46em; margin: 2em auto; color: #111; }
h1, h2 { color: #0b3d91; }
h1 { font-size: 22pt; }
h2 { font-size: 13pt; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
{{range .Sections}}<section>
<h2>{{.Title}}</h2>
{{.Body}}</section>
{{end}}</body>
</html>
`))

type htmlSection struct {
	Title string
	Body  template.HTML
}

// HTML renders the pitch as a standalone HTML page. Section bodies are
// converted from Markdown; raw HTML inside the pitch is dropped.
func HTML(name, pitch string) ([]byte, error) {
	var secs []htmlSection
	for _, sec := range sections.Extract(pitch) {
		var body bytes.Buffer
		if err := goldmark.Convert([]byte(sec.Body), &body); err != nil {
			return nil, fmt.Errorf("converting section %q: %w", sec.Title, err)
		}
		secs = append(secs, htmlSection{Title: sec.Title, Body: template.HTML(body.String())})
	}

	var out bytes.Buffer
	data := struct {
		Name     string
		Sections []htmlSection
	}{Name: name, Sections: secs}
	if err := pageTmpl.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("rendering html: %w", err)
	}
	return out.Bytes(), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns a pitch into an exportable document.
//
// A document is first built as a Story: an ordered list of styled blocks
// whose text is escaped markup. The PDF and HTML writers lay the Story out;
// markup is decoded back to plain text only at layout time.
package render

import (
	"strings"

	"github.com/pdiddy/pitchcrew/internal/sections"
)

// Style names the paragraph style of a Block.
type Style string

const (
	StyleTitle    Style = "title"
	StyleSubtitle Style = "subtitle"
	StyleSection  Style = "section"
	StyleBody     Style = "body"
	StyleSpacer   Style = "spacer"
)

// Block is one element of a Story. Markup is empty for spacers; Space is
// the vertical gap in points for spacers and zero otherwise.
type Block struct {
	Style  Style   `json:"style"`
	Markup string  `json:"markup,omitempty"`
	Space  float64 `json:"space,omitempty"`
}

// Vertical gaps in points.
const (
	titleGap    = 6
	subtitleGap = 10
	headingGap  = 4
	sectionGap  = 12
)

// lineBreak separates lines inside body markup.
const lineBreak = "<br/>"

var (
	markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	markupDecoder = strings.NewReplacer(lineBreak, "\n", "&lt;", "<", "&gt;", ">", "&amp;", "&")
)

// Escape replaces the markup-significant characters &, < and > with
// entities.
func Escape(s string) string {
	return markupEscaper.Replace(s)
}

// Decode reverses Escape and turns line breaks back into newlines.
func Decode(markup string) string {
	return markupDecoder.Replace(markup)
}

// Story builds the document blocks for a pitch: the title, the subtitle when
// set, then a heading and a body for every extracted section.
func Story(name, pitch, subtitle string) []Block {
	story := []Block{
		{Style: StyleTitle, Markup: Escape(name)},
		spacer(titleGap),
	}
	if subtitle != "" {
		story = append(story, Block{Style: StyleSubtitle, Markup: Escape(subtitle)}, spacer(subtitleGap))
	}

	for _, sec := range sections.Extract(pitch) {
		story = append(story,
			Block{Style: StyleSection, Markup: Escape(sec.Title)},
			spacer(headingGap),
			Block{Style: StyleBody, Markup: strings.ReplaceAll(Escape(sec.Body), "\n", lineBreak)},
			spacer(sectionGap),
		)
	}
	return story
}

func spacer(pt float64) Block {
	return Block{Style: StyleSpacer, Space: pt}
}

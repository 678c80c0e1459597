// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sections splits generated pitch text into labeled sections.
//
// A pitch is scanned for headings from a fixed vocabulary. Each heading
// owns the text up to the next heading, so sections keep the order in which
// they appear in the text rather than the vocabulary order.
package sections

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// FullPitch is the single key returned when no heading is recognized.
const FullPitch = "Full Pitch"

// fallbackBodyLen is how much text after a heading is kept when the
// heading is followed directly by another heading.
const fallbackBodyLen = 800

// Vocabulary lists the recognized section headings.
var Vocabulary = []string{
	"Executive Summary",
	"Problem",
	"Solution",
	"Target Market",
	"Unique Value Proposition",
	"Key Features",
	"Business Model",
	"Technology Stack",
	"Market Opportunity",
	"30-second Investor Pitch",
}

// headingPattern matches a vocabulary heading, case-insensitively, with up
// to two leading emphasis asterisks and a trailing colon.
var headingPattern = buildHeadingPattern(Vocabulary)

func buildHeadingPattern(vocab []string) *regexp.Regexp {
	quoted := make([]string, len(vocab))
	for i, h := range vocab {
		quoted[i] = regexp.QuoteMeta(h)
	}
	return regexp.MustCompile(`(?i)(?:\*{0,2}\s*)?(` + strings.Join(quoted, "|") + `)\s*:`)
}

// emphasisMarkers are stripped from section bodies.
var emphasisMarkers = strings.NewReplacer("**", "", "##", "")

// Section is one heading and its body.
type Section struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

// Map is an ordered mapping from section title to body.
type Map []Section

// Get returns the body stored under title.
func (m Map) Get(title string) (string, bool) {
	for _, s := range m {
		if s.Title == title {
			return s.Body, true
		}
	}
	return "", false
}

// Titles returns the section titles in order.
func (m Map) Titles() []string {
	titles := make([]string, len(m))
	for i, s := range m {
		titles[i] = s.Title
	}
	return titles
}

// set stores body under title. A title seen before keeps its position and
// takes the new body.
func (m Map) set(title, body string) Map {
	for i := range m {
		if m[i].Title == title {
			m[i].Body = body
			return m
		}
	}
	return append(m, Section{Title: title, Body: body})
}

// Extract splits text into sections. It never returns an empty Map: text
// without a recognized heading yields a single FullPitch entry holding the
// trimmed input.
func Extract(text string) Map {
	matches := headingPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return Map{{Title: FullPitch, Body: strings.TrimSpace(text)}}
	}

	var out Map
	for i, m := range matches {
		title := strings.TrimSpace(text[m[2]:m[3]])
		start := m[1]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		body := strings.TrimSpace(emphasisMarkers.Replace(strings.TrimSpace(text[start:end])))
		if body == "" {
			body = strings.TrimSpace(prefix(text[start:], fallbackBodyLen))
		}
		out = out.set(title, body)
	}
	return out
}

// prefix returns at most n bytes of s without splitting a rune.
func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

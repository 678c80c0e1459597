// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"regexp"
	"strings"
)

// MaxNames bounds the number of name candidates kept from a generation.
const MaxNames = 6

// FallbackNames is used when name generation produces nothing.
var FallbackNames = []string{"SkyPads", "RoofRent", "TopVenue", "Rooftopify", "RoofReserve", "AeroEvents"}

// ordinalPattern matches a leading list ordinal such as "1." or "2)".
var ordinalPattern = regexp.MustCompile(`^\d+[.)]\s*`)

// nameTrimChars are stripped from both ends of every generated line.
const nameTrimChars = " \t\r-•.*"

// ParseNames turns a generated reply into name candidates: one per line,
// bullets and ordinals stripped, blanks dropped, duplicates removed in
// first-seen order, at most MaxNames entries.
func ParseNames(raw string) []string {
	seen := make(map[string]bool)
	var names []string

	for _, line := range strings.Split(raw, "\n") {
		name := CleanName(line)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		if len(names) == MaxNames {
			break
		}
	}
	return names
}

// CleanName strips list markup from a single name.
func CleanName(s string) string {
	s = strings.Trim(strings.TrimSpace(s), nameTrimChars)
	s = ordinalPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.Trim(s, nameTrimChars))
}

func fallbackNames() []string {
	return append([]string(nil), FallbackNames...)
}

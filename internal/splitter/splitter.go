// Package splitter turns raw document text into ordered paragraph sections.
package splitter

import (
	"regexp"
	"strings"

	"support-bot/internal/models"
)

// Paragraph boundaries are one or more blank lines, tolerating trailing
// whitespace on the "blank" line.
var paragraphRe = regexp.MustCompile(`\n[ \t\r]*\n`)

// Split breaks raw text into trimmed, non-empty sections at blank-line
// boundaries. Each section's Index is its 0-based position. A document with
// no blank lines yields a single section holding the whole text. When
// paragraph splitting yields no sections at all, Split retries one section
// per non-empty line before giving up.
func Split(text string) []models.Section {
	sections := collect(paragraphRe.Split(text, -1))
	if len(sections) == 0 {
		sections = collect(strings.Split(text, "\n"))
	}
	return sections
}

func collect(parts []string) []models.Section {
	var sections []models.Section
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		sections = append(sections, models.Section{Index: len(sections), Text: p})
	}
	return sections
}

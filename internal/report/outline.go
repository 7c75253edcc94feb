// Package report derives navigation state from a finished report: the heading
// outline, the active heading under scroll, and citation resolution.
package report

import (
	"fmt"
	"regexp"
	"strings"
)

// Heading is one outline entry, derived from the report markdown.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	nonSlugRe = regexp.MustCompile(`[^a-z0-9\s-]`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// ExtractOutline scans report markdown line by line and returns the ordered
// heading sequence. Extraction is deterministic: the same content always
// yields the same outline, ids included.
func ExtractOutline(content string) []Heading {
	var outline []Heading
	seen := map[string]int{}
	for _, line := range strings.Split(content, "\n") {
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[2])
		outline = append(outline, Heading{
			ID:    slugID(text, seen),
			Text:  text,
			Level: len(m[1]),
		})
	}
	return outline
}

// Slugify lowercases the text, strips everything outside [a-z0-9\s-] and
// collapses whitespace runs to single hyphens.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = nonSlugRe.ReplaceAllString(s, "")
	return spaceRe.ReplaceAllString(s, "-")
}

// slugID disambiguates colliding slugs with an occurrence counter: the first
// "background" keeps its slug, later ones become "background-2", -3, and so on.
func slugID(text string, seen map[string]int) string {
	slug := Slugify(text)
	seen[slug]++
	if n := seen[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}

package report

import (
	"strconv"
	"strings"

	"ryeku/internal/models"
)

// Citation markers in report markdown are links whose target carries the
// citation ordinal, e.g. [2](#citation-2).
const citationPrefix = "#citation-"

// ParseCitationTarget extracts the citation id from a link target. Returns
// false for targets that are not citation markers.
func ParseCitationTarget(href string) (string, bool) {
	if !strings.HasPrefix(href, citationPrefix) {
		return "", false
	}
	id := href[len(citationPrefix):]
	if id == "" {
		return "", false
	}
	return id, true
}

// ResolveCitation maps a citation id (a 1-based decimal ordinal) into the
// report's final source list. An unparsable or out-of-range id resolves to
// not-found rather than an error; the viewer degrades to a placeholder.
func ResolveCitation(citationID string, sources []models.Source) (models.Source, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(citationID))
	if err != nil || n < 1 || n > len(sources) {
		return models.Source{}, false
	}
	return sources[n-1], true
}

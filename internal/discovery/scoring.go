// Package discovery supplements the backend's source list with candidates
// found client-side (configured feeds, news search) and fetches URL previews
// for the curation pane.
package discovery

import (
	"net/url"
	"strings"
)

// Heuristic credibility by domain class: official institutions and
// peer-reviewed outlets high, established press above the curation threshold,
// unknown domains low so they land in the "other" bucket by default.
var domainCredibility = map[string]int{
	"nature.com":           95,
	"science.org":          95,
	"nejm.org":             94,
	"thelancet.com":        94,
	"who.int":              92,
	"nih.gov":              92,
	"ieee.org":             90,
	"acm.org":              90,
	"arxiv.org":            85,
	"reuters.com":          85,
	"apnews.com":           85,
	"bbc.co.uk":            84,
	"bbc.com":              84,
	"nytimes.com":          82,
	"theguardian.com":      81,
	"economist.com":        81,
	"technologyreview.com": 80,
	"arstechnica.com":      72,
	"wired.com":            70,
}

const defaultCredibility = 50

// CredibilityFor scores a domain. Exact matches win; .gov and .edu hosts are
// treated as official/academic.
func CredibilityFor(domain string) int {
	d := strings.ToLower(strings.TrimPrefix(domain, "www."))
	if score, ok := domainCredibility[d]; ok {
		return score
	}
	if strings.HasSuffix(d, ".gov") {
		return 90
	}
	if strings.HasSuffix(d, ".edu") {
		return 85
	}
	for known, score := range domainCredibility {
		if strings.HasSuffix(d, "."+known) {
			return score
		}
	}
	return defaultCredibility
}

// DomainOf extracts the host from a URL, without the www prefix.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// relevanceFor scores how many topic keywords a title/description pair hits,
// scaled to 0-100.
func relevanceFor(text string, keywords []string) int {
	if len(keywords) == 0 {
		return 0
	}
	text = strings.ToLower(text)
	hits := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			hits++
		}
	}
	return hits * 100 / len(keywords)
}

// topicKeywords splits the topic and focus tags into lowercase match terms,
// skipping short stop-ish words.
func topicKeywords(topic string, focus []string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(topic)) {
		if len(w) >= 3 {
			out = append(out, w)
		}
	}
	for _, f := range focus {
		f = strings.ToLower(strings.TrimSpace(f))
		if len(f) >= 3 {
			out = append(out, f)
		}
	}
	return out
}

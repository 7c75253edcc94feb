package discovery

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"ryeku/internal/models"
)

// FeedSuggester pulls configured RSS feeds and filters items against the
// topic locally. Feeds are not queryable like search, so this is a
// contains-any-keyword match on title and description.
type FeedSuggester struct {
	Client *http.Client
	Feeds  []string
}

func NewFeedSuggester(feeds []string) *FeedSuggester {
	return &FeedSuggester{
		Client: &http.Client{Timeout: 15 * time.Second},
		Feeds:  feeds,
	}
}

// Suggest returns up to limit supplemental source candidates for the topic.
// Unreachable or malformed feeds are skipped, not fatal.
func (f *FeedSuggester) Suggest(ctx context.Context, topic models.ResearchTopic, limit int) ([]models.Source, error) {
	keywords := topicKeywords(topic.Topic, topic.Focus)
	if len(keywords) == 0 {
		return nil, nil
	}

	parser := gofeed.NewParser()
	out := make([]models.Source, 0, limit)

	for _, feedURL := range f.Feeds {
		if len(out) >= limit {
			break
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
		if err != nil {
			continue
		}
		resp, err := f.Client.Do(req)
		if err != nil {
			continue
		}
		feed, err := parser.Parse(resp.Body)
		resp.Body.Close()
		if err != nil {
			continue
		}

		for _, it := range feed.Items {
			if len(out) >= limit {
				break
			}
			title := strings.TrimSpace(it.Title)
			desc := strings.TrimSpace(it.Description)
			relevance := relevanceFor(title+" "+desc, keywords)
			if relevance == 0 {
				continue
			}

			link := strings.TrimSpace(it.Link)
			domain := DomainOf(link)
			out = append(out, models.Source{
				ID:               "feed-" + uuid.NewString(),
				Title:            title,
				URL:              link,
				Domain:           domain,
				Type:             "news",
				Description:      desc,
				CredibilityScore: CredibilityFor(domain),
				RelevanceScore:   relevance,
			})
		}
	}

	return out, nil
}

package discovery

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"ryeku/internal/models"
)

// NewsSearch queries the Google News RSS search endpoint for the topic.
// Unlike the fixed feeds this is query-driven, so results arrive pre-filtered.
type NewsSearch struct {
	Client *http.Client
}

func NewNewsSearch() *NewsSearch {
	return &NewsSearch{
		Client: &http.Client{Timeout: 20 * time.Second},
	}
}

type rssFeed struct {
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Source      rssSource `xml:"source"`
}

type rssSource struct {
	URL  string `xml:"url,attr"`
	Text string `xml:",chardata"`
}

func (n *NewsSearch) Suggest(ctx context.Context, topic models.ResearchTopic, limit int) ([]models.Source, error) {
	u := fmt.Sprintf(
		"https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en",
		url.QueryEscape(topic.Topic),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 ryeku/0.1 (+personal use)")
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.1")

	resp, err := n.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("news rss http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var feed rssFeed
	if err := xml.Unmarshal(raw, &feed); err != nil {
		return nil, err
	}

	keywords := topicKeywords(topic.Topic, topic.Focus)
	out := make([]models.Source, 0, limit)
	for _, it := range feed.Channel.Items {
		if len(out) >= limit {
			break
		}
		link := strings.TrimSpace(it.Link)
		if link == "" {
			continue
		}
		// Google News links redirect; the source element carries the
		// publisher's real domain.
		domain := DomainOf(strings.TrimSpace(it.Source.URL))
		if domain == "" {
			domain = DomainOf(link)
		}
		out = append(out, models.Source{
			ID:               "news-" + uuid.NewString(),
			Title:            strings.TrimSpace(it.Title),
			URL:              link,
			Domain:           domain,
			Type:             "news",
			Description:      strings.TrimSpace(it.Description),
			CredibilityScore: CredibilityFor(domain),
			RelevanceScore:   relevanceFor(it.Title+" "+it.Description, keywords),
		})
	}

	return out, nil
}

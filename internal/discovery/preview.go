package discovery

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Preview is the metadata shown when the user inspects a source while
// curating.
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SiteName    string `json:"siteName"`
	ImageURL    string `json:"imageUrl"`
}

// PreviewFetcher fetches a source page and pulls Open Graph / standard meta
// tags out of it.
type PreviewFetcher struct {
	Client *http.Client
}

func NewPreviewFetcher() *PreviewFetcher {
	return &PreviewFetcher{
		Client: &http.Client{Timeout: 12 * time.Second},
	}
}

func (p *PreviewFetcher) Fetch(ctx context.Context, rawURL string) (Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Preview{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 ryeku/0.1 (+personal use)")

	resp, err := p.Client.Do(req)
	if err != nil {
		return Preview{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Preview{}, fmt.Errorf("preview %s: http %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Preview{}, err
	}

	pv := Preview{
		URL:         rawURL,
		Title:       metaContent(doc, "og:title"),
		Description: metaContent(doc, "og:description"),
		SiteName:    metaContent(doc, "og:site_name"),
		ImageURL:    metaContent(doc, "og:image"),
	}
	if pv.Title == "" {
		pv.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if pv.Description == "" {
		pv.Description, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
		pv.Description = strings.TrimSpace(pv.Description)
	}
	if pv.SiteName == "" {
		pv.SiteName = DomainOf(rawURL)
	}
	return pv, nil
}

func metaContent(doc *goquery.Document, property string) string {
	v, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	return strings.TrimSpace(v)
}

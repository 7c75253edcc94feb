package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ryeku/internal/models"
)

// Client calls the Remote Research API over HTTP. It is a pure I/O boundary:
// no state beyond the connection settings.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SubmitTopic calls POST /api/research/topic. The ack body carries no data the
// client needs.
func (c *Client) SubmitTopic(ctx context.Context, topic models.ResearchTopic) error {
	resp, err := c.post(ctx, "/api/research/topic", topic)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkResp(resp, "/api/research/topic")
}

// FetchSources calls GET /api/research/sources for the topic.
func (c *Client) FetchSources(ctx context.Context, topic models.ResearchTopic) ([]models.Source, error) {
	q := url.Values{}
	q.Set("topic", topic.Topic)
	q.Set("depth", string(topic.Depth))
	for _, f := range topic.Focus {
		q.Add("focus", f)
	}
	q.Set("timeframe", topic.Timeframe)
	for _, st := range topic.SourceTypes {
		q.Add("source_types", st)
	}

	resp, err := c.get(ctx, "/api/research/sources?"+q.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "/api/research/sources"); err != nil {
		return nil, err
	}

	var sources []models.Source
	if err := json.NewDecoder(resp.Body).Decode(&sources); err != nil {
		return nil, newError(KindTransport, "/api/research/sources: decode: %v", err)
	}
	return sources, nil
}

// GenerateReport calls POST /api/research/generate and returns the job id.
func (c *Client) GenerateReport(ctx context.Context, topic models.ResearchTopic, sources []models.Source) (string, error) {
	resp, err := c.post(ctx, "/api/research/generate", map[string]any{
		"topic":   topic,
		"sources": sources,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "/api/research/generate"); err != nil {
		return "", err
	}

	var result struct {
		ReportID string `json:"report_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", newError(KindTransport, "/api/research/generate: decode: %v", err)
	}
	if result.ReportID == "" {
		return "", newError(KindTransport, "/api/research/generate: empty report_id")
	}
	return result.ReportID, nil
}

// CheckProgress calls GET /api/research/progress/{id}.
func (c *Client) CheckProgress(ctx context.Context, jobID string) (models.Progress, error) {
	resp, err := c.get(ctx, "/api/research/progress/"+url.PathEscape(jobID))
	if err != nil {
		return models.Progress{}, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "/api/research/progress"); err != nil {
		return models.Progress{}, err
	}

	var p models.Progress
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return models.Progress{}, newError(KindTransport, "/api/research/progress: decode: %v", err)
	}
	return p, nil
}

// GetReport calls GET /api/research/report/{id}.
func (c *Client) GetReport(ctx context.Context, jobID string) (*models.Report, error) {
	resp, err := c.get(ctx, "/api/research/report/"+url.PathEscape(jobID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "/api/research/report"); err != nil {
		return nil, err
	}

	var report models.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, newError(KindTransport, "/api/research/report: decode: %v", err)
	}
	return &report, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, newError(KindTransport, "%s: %v", path, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindTransport, "%s: %v", path, err)
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, newError(KindTransport, "%s: encode: %v", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, newError(KindTransport, "%s: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindTransport, "%s: %v", path, err)
	}
	return resp, nil
}

// checkResp normalizes a non-2xx response into an *Error. The backend sends
// FastAPI-style {"detail": "..."} bodies; fall back to the raw body, then to
// the status text.
func checkResp(resp *http.Response, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := ""
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil && detail.Detail != "" {
		msg = detail.Detail
	} else if s := strings.TrimSpace(string(raw)); s != "" {
		msg = s
	} else {
		msg = http.StatusText(resp.StatusCode)
	}

	kind := KindTransport
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = KindValidation
	case http.StatusNotFound:
		kind = KindNotFound
	}
	return newError(kind, "%s: http %d: %s", path, resp.StatusCode, msg)
}

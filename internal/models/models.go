package models

import (
	"encoding/json"
	"time"
)

// Depth controls how exhaustive the backend's research pass is.
type Depth string

const (
	DepthBasic         Depth = "basic"
	DepthComprehensive Depth = "comprehensive"
	DepthExpert        Depth = "expert"
)

// ResearchTopic is the user's research request. It is immutable once
// submitted for a session.
type ResearchTopic struct {
	Topic       string   `json:"topic"`
	Depth       Depth    `json:"depth"`
	Focus       []string `json:"focus"`
	Timeframe   string   `json:"timeframe"`
	SourceTypes []string `json:"sourceTypes"`
}

// Source is a candidate reference discovered for a topic. Scores are 0-100.
type Source struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	URL              string `json:"url"`
	Domain           string `json:"domain"`
	Type             string `json:"type"`
	Description      string `json:"description"`
	CredibilityScore int    `json:"credibilityScore"`
	RelevanceScore   int    `json:"relevanceScore"`
	Selected         bool   `json:"selected"`
}

// JobStatus is the backend's view of a generation job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further status changes can follow.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// GenerationJob tracks one backend report-generation task.
type GenerationJob struct {
	ID       string    `json:"id"`
	Status   JobStatus `json:"status"`
	Progress int       `json:"progress"`
}

// Progress is one poll response for a running job.
type Progress struct {
	Progress int       `json:"progress"`
	Status   JobStatus `json:"status"`
	Error    string    `json:"error,omitempty"`
}

// Timestamp is a time.Time whose JSON decoding also accepts the backend's
// naive ISO-8601 datetimes: FastAPI serializes utcnow() without an offset,
// which the stock time.Time decoder rejects. Marshalling stays RFC 3339.
type Timestamp struct {
	time.Time
}

const naiveISO8601 = "2006-01-02T15:04:05.999999999"

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// Offset-less form; the backend's naive datetimes are UTC.
		parsed, err = time.Parse(naiveISO8601, s)
	}
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Report is the finished research report. Immutable once created.
type Report struct {
	ID          string         `json:"id"`
	Topic       ResearchTopic  `json:"topic"`
	Content     string         `json:"content"`
	Sources     []Source       `json:"sources"`
	GeneratedAt Timestamp      `json:"generated_at"`
	Metadata    map[string]any `json:"metadata"`
}

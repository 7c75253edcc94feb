package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ryeku/internal/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func testTopic() models.ResearchTopic {
	return models.ResearchTopic{
		Topic:       "AI in healthcare",
		Depth:       models.DepthExpert,
		Focus:       []string{"diagnostics", "imaging"},
		Timeframe:   "last 5 years",
		SourceTypes: []string{"academic", "news"},
	}
}

func TestSubmitTopic(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody models.ResearchTopic
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"status":"success"}`))
	})

	require.NoError(t, c.SubmitTopic(context.Background(), testTopic()))
	assert.Equal(t, "/api/research/topic", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "AI in healthcare", gotBody.Topic)
}

func TestFetchSources(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/research/sources", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "AI in healthcare", q.Get("topic"))
		assert.Equal(t, "expert", q.Get("depth"))
		assert.Equal(t, []string{"diagnostics", "imaging"}, q["focus"])
		assert.Equal(t, []string{"academic", "news"}, q["source_types"])

		json.NewEncoder(w).Encode([]models.Source{
			{ID: "s1", Title: "Study", CredibilityScore: 90},
		})
	})

	sources, err := c.FetchSources(context.Background(), testTopic())
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "s1", sources[0].ID)
}

func TestGenerateReport(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/research/generate", r.URL.Path)
		var body struct {
			Topic   models.ResearchTopic `json:"topic"`
			Sources []models.Source      `json:"sources"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Sources, 2)
		json.NewEncoder(w).Encode(map[string]string{"report_id": "job-42"})
	})

	jobID, err := c.GenerateReport(context.Background(), testTopic(), []models.Source{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)
	assert.Equal(t, "job-42", jobID)
}

func TestGenerateReportEmptyJobID(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	_, err := c.GenerateReport(context.Background(), testTopic(), nil)
	require.Error(t, err)
}

func TestCheckProgress(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/research/progress/job-42", r.URL.Path)
		json.NewEncoder(w).Encode(models.Progress{Progress: 70, Status: models.StatusRunning})
	})

	p, err := c.CheckProgress(context.Background(), "job-42")
	require.NoError(t, err)
	assert.Equal(t, 70, p.Progress)
	assert.Equal(t, models.StatusRunning, p.Status)
}

func TestGetReport(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/research/report/job-42", r.URL.Path)
		// Body as the backend sends it, offset-less timestamp included.
		w.Write([]byte(`{
			"id": "job-42",
			"content": "# Title",
			"sources": [{"id": "s1"}],
			"generated_at": "2026-08-30T12:34:56.789012"
		}`))
	})

	r, err := c.GetReport(context.Background(), "job-42")
	require.NoError(t, err)
	assert.Equal(t, "job-42", r.ID)
	assert.Len(t, r.Sources, 1)
	assert.False(t, r.GeneratedAt.IsZero())
}

func TestErrorNormalization(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		wantMsg  string
	}{
		{"validation", http.StatusBadRequest, `{"detail":"topic is required"}`, KindValidation, "topic is required"},
		{"unprocessable", http.StatusUnprocessableEntity, `{"detail":"bad depth"}`, KindValidation, "bad depth"},
		{"not found", http.StatusNotFound, `{"detail":"unknown job"}`, KindNotFound, "unknown job"},
		{"server error", http.StatusInternalServerError, `boom`, KindTransport, "boom"},
		{"empty body", http.StatusBadGateway, ``, KindTransport, "Bad Gateway"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := c.CheckProgress(context.Background(), "job-42")
			require.Error(t, err)
			apiErr, ok := err.(*Error)
			require.True(t, ok, "errors must be normalized to *api.Error")
			assert.Equal(t, tc.wantKind, apiErr.Kind)
			assert.Contains(t, apiErr.Message, tc.wantMsg)
		})
	}
}

func TestNetworkFailureIsTransport(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	err := c.SubmitTopic(context.Background(), testTopic())
	require.Error(t, err)
	apiErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindTransport, apiErr.Kind)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "unknown job", Message(&Error{Kind: KindNotFound, Message: "unknown job"}))
}

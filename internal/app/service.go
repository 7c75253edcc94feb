package app

import (
	"context"
	"errors"
	"time"

	"ryeku/internal/api"
	"ryeku/internal/config"
	"ryeku/internal/discovery"
	"ryeku/internal/models"
	"ryeku/internal/report"
	"ryeku/internal/session"
)

const (
	// Activation line for the scroll-spy, in px from the top of the viewport.
	trackerOffset = 96
	// Scroll events arrive in bursts; only the trailing one matters.
	trackerDebounce = 60 * time.Millisecond

	suggestLimit = 10
)

// Service wires the session workflow together for both shells (Wails app and
// terminal runner).
type Service struct {
	Config  config.Config
	Session *session.Session
	Tracker *report.Tracker

	feeds   *discovery.FeedSuggester
	news    *discovery.NewsSearch
	preview *discovery.PreviewFetcher
}

// NewService builds the full client stack. events and onActiveHeading carry
// notifications back to whichever UI is attached; either may be nil.
func NewService(cfg config.Config, events session.Events, onActiveHeading func(id string)) *Service {
	client := api.NewClient(cfg.API.BaseURL, cfg.HTTPTimeout())
	return &Service{
		Config:  cfg,
		Session: session.New(client, events, cfg.PollInterval()),
		Tracker: report.NewTracker(trackerOffset, trackerDebounce, onActiveHeading),
		feeds:   discovery.NewFeedSuggester(cfg.Feeds),
		news:    discovery.NewNewsSearch(),
		preview: discovery.NewPreviewFetcher(),
	}
}

// SuggestSources gathers supplemental candidates from the news search and the
// configured feeds and merges them into the curation board. Individual
// provider failures are skipped; only both failing is an error.
func (s *Service) SuggestSources(ctx context.Context) (int, error) {
	snap := s.Session.Snapshot()
	if snap.Topic == nil {
		return 0, errors.New("no active research topic")
	}

	var candidates []models.Source
	var firstErr error
	for _, suggest := range []func(context.Context, models.ResearchTopic, int) ([]models.Source, error){
		s.news.Suggest, s.feeds.Suggest,
	} {
		got, err := suggest(ctx, *snap.Topic, suggestLimit)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		candidates = append(candidates, got...)
	}
	if len(candidates) == 0 && firstErr != nil {
		return 0, firstErr
	}
	return s.Session.AddSources(candidates)
}

// PreviewSource fetches page metadata for one source URL.
func (s *Service) PreviewSource(ctx context.Context, url string) (discovery.Preview, error) {
	return s.preview.Fetch(ctx, url)
}

// Outline derives the heading outline from the finished report and installs
// it on the tracker. Nil before the report stage.
func (s *Service) Outline() []report.Heading {
	r := s.Session.Report()
	if r == nil {
		return nil
	}
	outline := report.ExtractOutline(r.Content)
	s.Tracker.SetOutline(outline)
	return outline
}

// ReportHTML renders the finished report for the viewer.
func (s *Service) ReportHTML() (string, error) {
	r := s.Session.Report()
	if r == nil {
		return "", errors.New("no report available")
	}
	return report.RenderHTML(r.Content)
}

// ResolveCitation maps a citation ordinal to a source of the finished report.
func (s *Service) ResolveCitation(citationID string) (models.Source, bool) {
	r := s.Session.Report()
	if r == nil {
		return models.Source{}, false
	}
	return report.ResolveCitation(citationID, r.Sources)
}

// Package session owns the four-stage research workflow: topic input, source
// curation, report generation and the finished report. Every field change
// goes through one of the named operations here; nothing else mutates
// session state.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"

	"ryeku/internal/api"
	"ryeku/internal/curation"
	"ryeku/internal/models"
)

type Stage string

const (
	StageInput      Stage = "input"
	StageSources    Stage = "sources"
	StageGenerating Stage = "generating"
	StageReport     Stage = "report"
)

const defaultPollInterval = 2 * time.Second

// ResearchAPI is the remote backend as the session consumes it.
type ResearchAPI interface {
	SubmitTopic(ctx context.Context, topic models.ResearchTopic) error
	FetchSources(ctx context.Context, topic models.ResearchTopic) ([]models.Source, error)
	GenerateReport(ctx context.Context, topic models.ResearchTopic, sources []models.Source) (string, error)
	CheckProgress(ctx context.Context, jobID string) (models.Progress, error)
	GetReport(ctx context.Context, jobID string) (*models.Report, error)
}

// Session is the workflow state machine. At most one generation job is ever
// tracked; the stage gating below is what enforces that.
type Session struct {
	client       ResearchAPI
	events       Events
	log          log.Logger
	pollInterval time.Duration

	// emitMu makes a state change and the events announcing it one atomic
	// sequence relative to other emitters, so the UI observes events in the
	// same order the state changed. Acquired before mu, held across the
	// emit; Events implementations must not call back into the session.
	emitMu sync.Mutex

	mu     sync.Mutex
	stage  Stage
	topic  *models.ResearchTopic
	board  *curation.Board
	final  []models.Source
	job    *models.GenerationJob
	report *models.Report
	errMsg string

	// gen is bumped whenever the session lifetime restarts. Async results
	// carry the gen they were started under and are discarded on mismatch,
	// so a superseded poll or fetch can never touch current state.
	gen        int
	cancelPoll context.CancelFunc
}

func New(client ResearchAPI, events Events, pollInterval time.Duration) *Session {
	if events == nil {
		events = NopEvents{}
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Session{
		client:       client,
		events:       events,
		log:          log.DefaultLogger,
		pollInterval: pollInterval,
		stage:        StageInput,
	}
}

// SubmitTopic starts a session: clears prior data, optimistically moves to
// the sources stage, notifies the backend and loads the initial source list.
// Either call failing drops the session back to input with the error set.
func (s *Session) SubmitTopic(ctx context.Context, topic models.ResearchTopic) error {
	if strings.TrimSpace(topic.Topic) == "" {
		return errors.New("topic must not be empty")
	}

	s.emitMu.Lock()
	s.mu.Lock()
	if s.stage != StageInput {
		stage := s.stage
		s.mu.Unlock()
		s.emitMu.Unlock()
		return fmt.Errorf("cannot submit a topic while in the %s stage", stage)
	}
	s.resetLocked()
	s.topic = &topic
	s.stage = StageSources
	gen := s.gen
	s.mu.Unlock()

	s.events.ErrorChanged("")
	s.events.StageChanged(StageSources)
	s.emitMu.Unlock()
	s.log.Info().Str("topic", topic.Topic).Str("depth", string(topic.Depth)).Msg("topic submitted")

	if err := s.client.SubmitTopic(ctx, topic); err != nil {
		return s.fail(gen, StageInput, err)
	}
	sources, err := s.client.FetchSources(ctx, topic)
	if err != nil {
		return s.fail(gen, StageInput, err)
	}
	sources = dedupeByID(sources)

	s.emitMu.Lock()
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.emitMu.Unlock()
		return nil
	}
	s.board = curation.NewBoard(sources)
	s.mu.Unlock()

	s.events.SourcesLoaded(sources)
	s.emitMu.Unlock()
	s.log.Info().Int("sources", len(sources)).Msg("sources loaded")
	return nil
}

// ConfirmSources finalizes curation and starts report generation. An empty
// trusted bucket is a local validation error: the stage does not change and
// the backend is never contacted.
func (s *Session) ConfirmSources(ctx context.Context) error {
	s.emitMu.Lock()
	s.mu.Lock()
	if s.stage != StageSources {
		stage := s.stage
		s.mu.Unlock()
		s.emitMu.Unlock()
		return fmt.Errorf("cannot confirm sources while in the %s stage", stage)
	}
	if s.board == nil {
		s.mu.Unlock()
		s.emitMu.Unlock()
		return curation.ErrNoTrustedSources
	}
	final, err := s.board.Confirm()
	if err != nil {
		s.errMsg = err.Error()
		s.mu.Unlock()
		s.events.ErrorChanged(err.Error())
		s.emitMu.Unlock()
		return err
	}
	s.final = final
	s.errMsg = ""
	s.stage = StageGenerating
	topic := *s.topic
	gen := s.gen
	s.mu.Unlock()

	s.events.ErrorChanged("")
	s.events.StageChanged(StageGenerating)
	s.emitMu.Unlock()

	selected := make([]models.Source, 0, len(final))
	for _, src := range final {
		if src.Selected {
			selected = append(selected, src)
		}
	}

	jobID, err := s.client.GenerateReport(ctx, topic, selected)
	if err != nil {
		return s.fail(gen, StageSources, err)
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return nil
	}
	s.job = &models.GenerationJob{ID: jobID, Status: models.StatusPending}
	s.startPollLocked(gen, jobID)
	s.mu.Unlock()

	s.log.Info().Str("job", jobID).Int("sources", len(selected)).Msg("generation started")
	return nil
}

// StartNew abandons the current session from any stage: cancels any in-flight
// poller, clears every field and returns to input.
func (s *Session) StartNew() {
	s.emitMu.Lock()
	s.mu.Lock()
	s.stopPollLocked()
	s.gen++
	s.resetLocked()
	s.stage = StageInput
	s.mu.Unlock()

	s.events.ErrorChanged("")
	s.events.StageChanged(StageInput)
	s.emitMu.Unlock()
	s.log.Info().Msg("session reset")
}

// SetError surfaces an error message without changing stage. Used by
// peripheral UI that fails independently of the main sequence.
func (s *Session) SetError(message string) {
	s.emitMu.Lock()
	s.mu.Lock()
	s.errMsg = message
	s.mu.Unlock()
	s.events.ErrorChanged(message)
	s.emitMu.Unlock()
}

// MoveToTrusted reclassifies a source into the trusted bucket.
func (s *Session) MoveToTrusted(id string) error {
	return s.curate(func(b *curation.Board) error { return b.MoveToTrusted(id) })
}

// MoveToOther reclassifies a source into the other bucket.
func (s *Session) MoveToOther(id string) error {
	return s.curate(func(b *curation.Board) error { return b.MoveToOther(id) })
}

// Reorder repositions a source within one bucket.
func (s *Session) Reorder(bucket curation.Bucket, from, to int) error {
	return s.curate(func(b *curation.Board) error { return b.Reorder(bucket, from, to) })
}

// AddSources merges supplemental source suggestions into the curation board.
// Only valid while curating; duplicates are skipped.
func (s *Session) AddSources(sources []models.Source) (int, error) {
	added := 0
	err := s.curate(func(b *curation.Board) error {
		added = b.Add(sources)
		return nil
	})
	return added, err
}

func (s *Session) curate(op func(*curation.Board) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageSources || s.board == nil {
		return fmt.Errorf("sources can only be curated in the %s stage", StageSources)
	}
	return op(s.board)
}

// State is a read-only snapshot of the session for the UI layer.
type State struct {
	Stage    Stage                 `json:"stage"`
	Topic    *models.ResearchTopic `json:"topic,omitempty"`
	Trusted  []models.Source       `json:"trusted"`
	Other    []models.Source       `json:"other"`
	Progress int                   `json:"progress"`
	Error    string                `json:"error,omitempty"`
	Report   *models.Report        `json:"report,omitempty"`
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{Stage: s.stage, Topic: s.topic, Error: s.errMsg, Report: s.report}
	if s.board != nil {
		st.Trusted = s.board.Trusted()
		st.Other = s.board.Other()
	}
	if s.job != nil {
		st.Progress = s.job.Progress
	}
	return st
}

// Stage returns the current workflow stage.
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Report returns the finished report, or nil before the report stage.
func (s *Session) Report() *models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// FinalSources returns the confirmed ordered source list.
func (s *Session) FinalSources() []models.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Source(nil), s.final...)
}

// fail records a backend failure: the session drops to the given safe stage
// with the error message attached. Results from a superseded lifetime are
// discarded.
func (s *Session) fail(gen int, stage Stage, err error) error {
	msg := api.Message(err)

	s.emitMu.Lock()
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.emitMu.Unlock()
		return err
	}
	s.stopPollLocked()
	s.stage = stage
	s.errMsg = msg
	s.mu.Unlock()

	s.events.ErrorChanged(msg)
	s.events.StageChanged(stage)
	s.emitMu.Unlock()
	s.log.Warn().Str("stage", string(stage)).Msg(msg)
	return err
}

// resetLocked clears session data. The caller holds s.mu and decides whether
// the lifetime restarts (gen).
func (s *Session) resetLocked() {
	s.topic = nil
	s.board = nil
	s.final = nil
	s.job = nil
	s.report = nil
	s.errMsg = ""
}

func dedupeByID(sources []models.Source) []models.Source {
	seen := make(map[string]bool, len(sources))
	out := sources[:0]
	for _, s := range sources {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out
}

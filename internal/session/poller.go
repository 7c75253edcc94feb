package session

import (
	"context"
	"errors"
	"time"

	"ryeku/internal/models"
)

// startPollLocked launches the recurring progress poll for a job. The caller
// holds s.mu. The poll's lifetime is scoped to this one job: it stops on a
// terminal status, on the first query failure, and on session reset.
func (s *Session) startPollLocked(gen int, jobID string) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelPoll = cancel
	go s.poll(ctx, gen, jobID)
}

// stopPollLocked cancels the running poll, if any. The caller holds s.mu.
// A response already in flight is discarded by the ctx/gen checks below.
func (s *Session) stopPollLocked() {
	if s.cancelPoll != nil {
		s.cancelPoll()
		s.cancelPoll = nil
	}
}

func (s *Session) poll(ctx context.Context, gen int, jobID string) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		progress, err := s.client.CheckProgress(ctx, jobID)
		if ctx.Err() != nil {
			// Cancelled while the query was in flight; whatever came
			// back no longer matters.
			return
		}
		if err != nil {
			// First failure is fatal: there are no idempotent retry
			// semantics for a report that may have partially generated.
			s.fail(gen, StageInput, err)
			return
		}
		if !s.applyProgress(gen, jobID, progress) {
			return
		}

		switch progress.Status {
		case models.StatusCompleted:
			s.fetchReport(ctx, gen, jobID)
			return
		case models.StatusFailed:
			msg := progress.Error
			if msg == "" {
				msg = "report generation failed"
			}
			s.fail(gen, StageInput, errors.New(msg))
			return
		}
	}
}

// applyProgress records a poll result. Progress is clamped monotonically:
// a value lower than the last recorded one is a stale response and the
// recorded value is re-reported unchanged. Returns false when the result
// belongs to a superseded session lifetime.
func (s *Session) applyProgress(gen int, jobID string, progress models.Progress) bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.gen != gen || s.job == nil {
		s.mu.Unlock()
		return false
	}
	s.job.Status = progress.Status
	if progress.Progress > s.job.Progress {
		s.job.Progress = progress.Progress
	}
	recorded := s.job.Progress
	s.mu.Unlock()

	s.events.ProgressUpdated(recorded)
	s.log.Debug().Str("job", jobID).Int("progress", recorded).Str("status", string(progress.Status)).Msg("poll")
	return true
}

// fetchReport retrieves the finished report after a completed status. The job
// succeeded; a fetch failure is still fatal for the session because job state
// cannot be resumed.
func (s *Session) fetchReport(ctx context.Context, gen int, jobID string) {
	report, err := s.client.GetReport(ctx, jobID)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.fail(gen, StageInput, err)
		return
	}

	s.emitMu.Lock()
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.emitMu.Unlock()
		return
	}
	s.stopPollLocked()
	s.report = report
	s.stage = StageReport
	s.mu.Unlock()

	s.events.ReportReady(report)
	s.events.StageChanged(StageReport)
	s.emitMu.Unlock()
	s.log.Info().Str("report", report.ID).Msg("report ready")
}

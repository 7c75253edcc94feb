package main

import (
	"context"
	"strings"

	"github.com/phuslu/log"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"ryeku/internal/app"
	"ryeku/internal/config"
	"ryeku/internal/curation"
	"ryeku/internal/discovery"
	"ryeku/internal/models"
	"ryeku/internal/report"
	"ryeku/internal/session"
)

// App struct
type App struct {
	ctx     context.Context
	service *app.Service
}

// NewApp creates a new App application struct
func NewApp() *App {
	cfg, err := config.Load("")
	if err != nil {
		// Bad config file: fall back to defaults, surface the error once
		// the frontend is up.
		cfg = config.Default()
	}
	log.DefaultLogger.Level = log.ParseLevel(cfg.Log.Level)

	a := &App{}
	a.service = app.NewService(cfg, &frontendEvents{app: a}, func(id string) {
		a.emit("report:active-heading", id)
	})
	if err != nil {
		a.service.Session.SetError(err.Error())
	}
	return a
}

// startup is called when the app starts. The context is saved
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown cancels any in-flight polling when the shell tears down.
func (a *App) shutdown(ctx context.Context) {
	a.service.Session.StartNew()
}

func (a *App) emit(event string, args ...interface{}) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, event, args...)
}

// frontendEvents forwards session notifications as Wails runtime events.
type frontendEvents struct {
	app *App
}

func (e *frontendEvents) StageChanged(stage session.Stage) { e.app.emit("session:stage", stage) }
func (e *frontendEvents) SourcesLoaded(sources []models.Source) {
	e.app.emit("session:sources", sources)
}
func (e *frontendEvents) ProgressUpdated(progress int)      { e.app.emit("session:progress", progress) }
func (e *frontendEvents) ReportReady(report *models.Report) { e.app.emit("session:report", report) }
func (e *frontendEvents) ErrorChanged(message string)       { e.app.emit("session:error", message) }

// TopicParams exposed to frontend
type TopicParams struct {
	Topic       string   `json:"topic"`
	Depth       string   `json:"depth"`
	Focus       []string `json:"focus"`
	Timeframe   string   `json:"timeframe"`
	SourceTypes []string `json:"sourceTypes"`
}

// SubmitTopic starts a research session and loads the candidate sources.
func (a *App) SubmitTopic(p TopicParams) (session.State, error) {
	topic := models.ResearchTopic{
		Topic:       p.Topic,
		Depth:       models.Depth(p.Depth),
		Focus:       p.Focus,
		Timeframe:   p.Timeframe,
		SourceTypes: p.SourceTypes,
	}
	err := a.service.Session.SubmitTopic(a.ctx, topic)
	return a.service.Session.Snapshot(), err
}

// State returns the current session snapshot.
func (a *App) State() session.State {
	return a.service.Session.Snapshot()
}

func (a *App) MoveToTrusted(id string) error {
	return a.service.Session.MoveToTrusted(id)
}

func (a *App) MoveToOther(id string) error {
	return a.service.Session.MoveToOther(id)
}

func (a *App) ReorderSources(bucket string, from, to int) error {
	return a.service.Session.Reorder(curation.Bucket(bucket), from, to)
}

// ConfirmSources finalizes curation and starts report generation.
func (a *App) ConfirmSources() (session.State, error) {
	err := a.service.Session.ConfirmSources(a.ctx)
	return a.service.Session.Snapshot(), err
}

// SuggestSources merges client-side discovered candidates into the board.
func (a *App) SuggestSources() (int, error) {
	return a.service.SuggestSources(a.ctx)
}

// PreviewSource fetches page metadata for the curation preview pane.
func (a *App) PreviewSource(url string) (discovery.Preview, error) {
	return a.service.PreviewSource(a.ctx, url)
}

// StartNew abandons the session and returns to topic input.
func (a *App) StartNew() session.State {
	a.service.Session.StartNew()
	return a.service.Session.Snapshot()
}

// SetError surfaces an error from peripheral frontend components.
func (a *App) SetError(message string) {
	a.service.Session.SetError(message)
}

// Outline returns the report's heading outline and arms the scroll tracker.
func (a *App) Outline() []report.Heading {
	return a.service.Outline()
}

// ReportHTML renders the report markdown for the viewer.
func (a *App) ReportHTML() (string, error) {
	return a.service.ReportHTML()
}

// SetHeadingPositions records rendered heading offsets after layout.
func (a *App) SetHeadingPositions(positions []report.Position) {
	a.service.Tracker.SetPositions(positions)
}

// ReportScrolled reports the viewer's scroll offset; the active heading is
// pushed back via the report:active-heading event.
func (a *App) ReportScrolled(scrollTop float64) {
	a.service.Tracker.Scrolled(scrollTop)
}

// ScrollToHeading asks the viewer to bring a heading to the top. Unknown ids
// are a no-op and return false.
func (a *App) ScrollToHeading(id string) bool {
	pos, ok := a.service.Tracker.ScrollTo(id)
	if !ok {
		return false
	}
	a.emit("report:scroll-to", pos)
	return true
}

// ResolveCitation maps a citation marker to its source. Accepts either the
// bare ordinal ("2") or the link target ("#citation-2"). Returns nil when the
// ordinal is out of range; the viewer shows a placeholder.
func (a *App) ResolveCitation(marker string) *models.Source {
	id := marker
	if strings.HasPrefix(marker, "#") {
		parsed, ok := report.ParseCitationTarget(marker)
		if !ok {
			return nil
		}
		id = parsed
	}
	src, ok := a.service.ResolveCitation(id)
	if !ok {
		return nil
	}
	return &src
}

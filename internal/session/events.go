package session

import "ryeku/internal/models"

// Events receives session change notifications: the Wails shell forwards them
// to the frontend as runtime events, the terminal runner prints them. Calls
// may come from the polling goroutine, so implementations must be safe for
// concurrent use, and they must not call back into the session: the session
// serializes emission so events arrive in state-change order.
type Events interface {
	StageChanged(stage Stage)
	SourcesLoaded(sources []models.Source)
	ProgressUpdated(progress int)
	ReportReady(report *models.Report)
	// ErrorChanged fires with "" when a previous error is cleared.
	ErrorChanged(message string)
}

// NopEvents discards all notifications.
type NopEvents struct{}

func (NopEvents) StageChanged(Stage)            {}
func (NopEvents) SourcesLoaded([]models.Source) {}
func (NopEvents) ProgressUpdated(int)           {}
func (NopEvents) ReportReady(*models.Report)    {}
func (NopEvents) ErrorChanged(string)           {}

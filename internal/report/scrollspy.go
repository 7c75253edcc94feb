package report

import (
	"sync"
	"time"

	"github.com/bep/debounce"
)

// Position is a rendered heading's vertical offset in the report document,
// as reported by whatever is displaying it.
type Position struct {
	ID  string  `json:"id"`
	Top float64 `json:"top"`
}

// ActiveHeading picks the heading the viewer should highlight for the given
// scroll position: of the headings whose top edge sits at or above the
// activation line (scrollTop + offset), the lowest one. Returns "" when the
// scroll position is above every heading.
func ActiveHeading(positions []Position, scrollTop, offset float64) string {
	line := scrollTop + offset
	active := ""
	best := 0.0
	for _, p := range positions {
		if p.Top <= line && (active == "" || p.Top >= best) {
			active = p.ID
			best = p.Top
		}
	}
	return active
}

// Tracker keeps the outline's active-heading state in sync with the viewport.
// The display layer feeds it heading positions and raw scroll offsets; the
// tracker coalesces scroll bursts and notifies only when the active heading
// actually changes.
type Tracker struct {
	mu        sync.Mutex
	offset    float64
	outline   []Heading
	positions []Position
	active    string
	onActive  func(id string)
	debounced func(f func())
}

// NewTracker builds a tracker with the given activation offset from the top
// of the viewport and scroll debounce interval. onActive may be nil.
func NewTracker(offset float64, wait time.Duration, onActive func(id string)) *Tracker {
	return &Tracker{
		offset:    offset,
		onActive:  onActive,
		debounced: debounce.New(wait),
	}
}

// SetOutline installs the outline for the currently displayed report and
// clears state derived from the previous one.
func (t *Tracker) SetOutline(outline []Heading) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outline = append([]Heading(nil), outline...)
	t.positions = nil
	t.active = ""
}

// SetPositions records the rendered heading offsets. Called by the display
// layer after layout (and again on resize/reflow).
func (t *Tracker) SetPositions(positions []Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.positions = append([]Position(nil), positions...)
}

// Scrolled reports a new scroll offset. Bursts are debounced; the trailing
// offset wins.
func (t *Tracker) Scrolled(scrollTop float64) {
	t.debounced(func() { t.apply(scrollTop) })
}

func (t *Tracker) apply(scrollTop float64) {
	t.mu.Lock()
	id := ActiveHeading(t.positions, scrollTop, t.offset)
	changed := id != t.active
	if changed {
		t.active = id
	}
	notify := t.onActive
	t.mu.Unlock()

	if changed && notify != nil {
		notify(id)
	}
}

// Active returns the currently highlighted heading id, or "".
func (t *Tracker) Active() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// ScrollTo resolves a navigation request for the given heading id. Unknown
// ids are a no-op, not an error: ok is false and the viewer scrolls nowhere.
func (t *Tracker) ScrollTo(id string) (Position, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	known := false
	for _, h := range t.outline {
		if h.ID == id {
			known = true
			break
		}
	}
	if !known {
		return Position{}, false
	}
	for _, p := range t.positions {
		if p.ID == id {
			return p, true
		}
	}
	// No measured position yet; the viewer can still anchor-scroll by id.
	return Position{ID: id}, true
}

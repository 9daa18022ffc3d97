// Package status renders the one-line footer of the search screen.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/styles"
)

// State is what the search screen is doing.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateResults
	StateFailed
)

// Bar shows the search scope and outcome on the left and key hints on
// the right.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	width  int

	state   State
	scope   string
	results int
	took    time.Duration
	note    string
}

// NewBar creates an idle bar scoped to the whole library.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, width: 80}
}

// Searching marks a query as in flight.
func (b *Bar) Searching() {
	b.state = StateSearching
	b.note = ""
}

// Results records a finished search.
func (b *Bar) Results(n int, took time.Duration) {
	b.state = StateResults
	b.results = n
	b.took = took
	b.note = ""
}

// Failed records an error; it stays until the next search or Reset.
func (b *Bar) Failed(err error) {
	b.state = StateFailed
	b.note = err.Error()
}

// Note shows a transient message next to the current state.
func (b *Bar) Note(msg string) {
	b.note = msg
}

// SetScope names the collection being searched. Empty means the library.
func (b *Bar) SetScope(name string) {
	b.scope = name
}

// SetWidth sets the rendered width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Reset returns to idle, keeping the scope and width.
func (b *Bar) Reset() {
	b.state = StateIdle
	b.results = 0
	b.took = 0
	b.note = ""
}

func (b *Bar) State() State     { return b.state }
func (b *Bar) Scope() string    { return b.scope }
func (b *Bar) ResultCount() int { return b.results }
func (b *Bar) Message() string  { return b.note }

// View renders the bar at its configured width.
func (b *Bar) View() string {
	left := b.left()
	right := b.styles.Muted.Render(hints(b.bindings()))
	inner := b.width - b.styles.StatusBar.GetHorizontalFrameSize()
	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) left() string {
	scope := "library"
	if b.scope != "" {
		scope = b.scope
	}
	parts := []string{b.styles.Subtitle.Render(scope)}

	switch b.state {
	case StateSearching:
		parts = append(parts, b.styles.Muted.Render("searching..."))
	case StateResults:
		parts = append(parts, b.styles.Normal.Render(resultSummary(b.results, b.took)))
	case StateFailed:
		parts = append(parts, b.styles.Error.Render("error: "+b.note))
		return strings.Join(parts, b.styles.Muted.Render(" · "))
	case StateIdle:
	}

	if b.note != "" {
		parts = append(parts, b.styles.Success.Render(b.note))
	}
	return strings.Join(parts, b.styles.Muted.Render(" · "))
}

func (b *Bar) bindings() []key.Binding {
	if b.state == StateResults && b.results > 0 {
		return b.keymap.ResultsHelp()
	}
	return b.keymap.ShortHelp()
}

func resultSummary(n int, took time.Duration) string {
	noun := "documents"
	if n == 1 {
		noun = "document"
	}
	if n == 0 {
		return "no matching documents"
	}
	return fmt.Sprintf("%d %s in %s", n, noun, took.Round(time.Millisecond))
}

func hints(bindings []key.Binding) string {
	out := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		out = append(out, h.Key+": "+h.Desc)
	}
	return strings.Join(out, " | ")
}

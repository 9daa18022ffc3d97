// Package list renders ranked search results.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// rowHeight is the number of lines one result occupies.
const rowHeight = 3

// meterWidth is the number of cells in the relevance meter.
const meterWidth = 10

// ResultList is a scrolling, selectable list of search results.
type ResultList struct {
	styles  *styles.Styles
	results []domain.SearchResult
	cursor  int
	width   int
	height  int
}

// NewResultList creates an empty list.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{styles: s, width: 80, height: 10}
}

func (r *ResultList) Init() tea.Cmd { return nil }

// Update moves the cursor on arrow and vi keys.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the rows that fit around the cursor.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	first, last := r.window()
	rows := make([]string, 0, last-first+2)
	header := fmt.Sprintf("Results (%d)", len(r.results))
	if first > 0 || last < len(r.results) {
		header += fmt.Sprintf("  %d-%d", first+1, last)
	}
	rows = append(rows, r.styles.Subtitle.Render(header), "")

	for i := first; i < last; i++ {
		rows = append(rows, r.row(i))
	}
	return strings.Join(rows, "\n")
}

// window returns the half-open range of visible rows.
func (r *ResultList) window() (int, int) {
	fits := max((r.height-2)/rowHeight, 1)
	first := max(r.cursor-fits+1, 0)
	return first, min(first+fits, len(r.results))
}

func (r *ResultList) row(i int) string {
	res := &r.results[i]
	nameWidth := max(r.width-28, 10)

	name := res.Document.Name
	if name == "" {
		name = "(unnamed)"
	}
	head := fmt.Sprintf("%2d. %-*s", i+1, nameWidth, truncate(name, nameWidth))
	relevance := meter(res.Score) + fmt.Sprintf(" %3.0f%%", res.Score*100)

	var first string
	if i == r.cursor {
		first = r.styles.Selected.Render(head + "  " + relevance)
	} else {
		first = r.styles.Normal.Render(head+"  ") + r.styles.Muted.Render(relevance)
	}

	detail := truncateLeft(res.Document.Path, max(r.width-24, 20))
	if !res.Document.ModifiedAt.IsZero() {
		detail += "  · " + humanize.Time(res.Document.ModifiedAt)
	}

	text := res.Snippet
	if text == "" {
		text = res.Chunk.Content
	}
	text = truncate(strings.Join(strings.Fields(text), " "), max(r.width-6, 20))

	return first + "\n" +
		r.styles.Subtitle.Render("    "+detail) + "\n" +
		r.styles.Muted.Render("    "+text)
}

// meter draws score in [0,1] as a bar of filled and empty cells.
func meter(score float64) string {
	filled := int(score*meterWidth + 0.5)
	filled = min(max(filled, 0), meterWidth)
	return strings.Repeat("█", filled) + strings.Repeat("░", meterWidth-filled)
}

// truncate cuts s to n runes, ending with an ellipsis when shortened.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// truncateLeft keeps the tail of s; for paths that is the file name.
func truncateLeft(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return "..." + string(runes[len(runes)-n+3:])
}

// SetResults replaces the list and moves the cursor to the top.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.cursor = 0
}

func (r *ResultList) Results() []domain.SearchResult { return r.results }
func (r *ResultList) Selected() int                  { return r.cursor }
func (r *ResultList) Count() int                     { return len(r.results) }
func (r *ResultList) IsEmpty() bool                  { return len(r.results) == 0 }

// SetSelected moves the cursor; out-of-range indexes are ignored.
func (r *ResultList) SetSelected(i int) {
	if i >= 0 && i < len(r.results) {
		r.cursor = i
	}
}

// SelectedResult returns the result under the cursor, or nil.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if r.cursor < 0 || r.cursor >= len(r.results) {
		return nil
	}
	return &r.results[r.cursor]
}

func (r *ResultList) MoveUp() {
	r.cursor = max(r.cursor-1, 0)
}

func (r *ResultList) MoveDown() {
	r.cursor = max(min(r.cursor+1, len(r.results)-1), 0)
}

func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

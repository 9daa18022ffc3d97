// Package docdetails provides the document details view component for the TUI.
package docdetails

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
)

const timeLayout = "2006-01-02 15:04"

// View shows the metadata of one document.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	details      *driving.DocumentDetails
	scrollOffset int
	width        int
	height       int
	ready        bool
	err          error
}

// NewView creates a new document details view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keymap: keymap.DefaultKeyMap(),
		width:  80,
		height: 24,
	}
}

// SetDetails sets the document details to display.
func (v *View) SetDetails(details *driving.DocumentDetails) {
	v.details = details
	v.scrollOffset = 0
	v.err = nil
}

// SetError sets an error to display.
func (v *View) SetError(err error) {
	v.err = err
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the document details view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keymap.Up):
			if v.scrollOffset > 0 {
				v.scrollOffset--
			}
		case key.Matches(msg, v.keymap.Down):
			if v.scrollOffset < v.maxScrollOffset() {
				v.scrollOffset++
			}
		case key.Matches(msg, v.keymap.Back):
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewDocuments}
			}
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) visibleLines() int {
	return max(v.height-6, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.buildContent())-v.visibleLines(), 0)
}

// field is one label/value row. A blank label renders a section heading.
type field struct {
	label string
	value string
}

func (v *View) buildContent() []field {
	if v.details == nil {
		return nil
	}
	doc := v.details.Document

	fields := []field{
		{"ID", fmt.Sprint(doc.ID)},
		{"Name", doc.Name},
		{"Path", doc.Path},
		{"Size", humanize.IBytes(uint64(max(doc.Size, 0)))},
		{"Status", v.details.Status.String()},
		{"Chunks", fmt.Sprint(v.details.ChunkCount)},
	}
	if doc.Category != "" {
		fields = append(fields, field{"Category", doc.Category})
	}
	if tags := doc.TagList(); len(tags) > 0 {
		fields = append(fields, field{"Tags", strings.Join(tags, ", ")})
	}
	if !doc.ModifiedAt.IsZero() {
		fields = append(fields, field{"Modified", doc.ModifiedAt.Format(timeLayout)})
	}
	if !doc.AddedAt.IsZero() {
		fields = append(fields, field{"Added", fmt.Sprintf("%s (%s)",
			doc.AddedAt.Format(timeLayout), humanize.Time(doc.AddedAt))})
	}

	if len(v.details.Collections) > 0 {
		fields = append(fields, field{}, field{value: "Collections"})
		for _, c := range v.details.Collections {
			fields = append(fields, field{value: "  " + v.styles.Swatch(c.Color) + " " + c.Name})
		}
	}
	return fields
}

// View renders the document details view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Document Details"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(v.width-4, 60), 0)))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.details == nil:
		b.WriteString(v.styles.Muted.Render("No document details available"))
	default:
		fields := v.buildContent()
		end := min(v.scrollOffset+v.visibleLines(), len(fields))
		for _, f := range fields[v.scrollOffset:end] {
			switch {
			case f.label != "":
				b.WriteString(v.styles.Label.Render(f.label + ":"))
				b.WriteString(v.styles.Normal.Render(f.value))
			case f.value == "Collections":
				b.WriteString(v.styles.Subtitle.Render(f.value))
			default:
				b.WriteString(f.value)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] scroll  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Details returns the current document details.
func (v *View) Details() *driving.DocumentDetails {
	return v.details
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Package collections provides the collections list view for the TUI.
package collections

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
)

var errNoCollectionService = errors.New("collection service not available")

// View lists collections with their member counts.
type View struct {
	styles            *styles.Styles
	keymap            *keymap.KeyMap
	collectionService driving.CollectionService
	ctx               context.Context

	collections []domain.Collection
	counts      map[int64]int
	selected    int
	width       int
	height      int
	ready       bool
	err         error
	loading     bool
}

// NewView creates a new collections view.
func NewView(s *styles.Styles, collectionService driving.CollectionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:            s,
		keymap:            keymap.DefaultKeyMap(),
		collectionService: collectionService,
		ctx:               context.Background(),
		counts:            make(map[int64]int),
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the collections.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadCollections()
}

func (v *View) loadCollections() tea.Cmd {
	return func() tea.Msg {
		if v.collectionService == nil {
			return messages.CollectionsLoaded{Err: errNoCollectionService}
		}

		collections, err := v.collectionService.List(v.ctx)
		if err != nil {
			return messages.CollectionsLoaded{Err: err}
		}

		counts := make(map[int64]int, len(collections))
		for _, c := range collections {
			docs, err := v.collectionService.Documents(v.ctx, c.ID)
			if err != nil {
				return messages.CollectionsLoaded{Err: fmt.Errorf("collection %d: %w", c.ID, err)}
			}
			counts[c.ID] = len(docs)
		}
		return messages.CollectionsLoaded{Collections: collections, Counts: counts}
	}
}

// Update handles messages for the collections view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.CollectionsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.collections = msg.Collections
			v.counts = msg.Counts
			v.selected = min(v.selected, max(len(v.collections)-1, 0))
		}
		return v, nil

	case messages.CollectionDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.loadCollections()
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case key.Matches(msg, v.keymap.Down):
		if v.selected < len(v.collections)-1 {
			v.selected++
		}
	case key.Matches(msg, v.keymap.Select):
		if c := v.SelectedCollection(); c != nil {
			selected := *c
			return v, func() tea.Msg {
				return messages.CollectionSelected{Collection: selected}
			}
		}
	case key.Matches(msg, v.keymap.SearchIn):
		if c := v.SelectedCollection(); c != nil {
			selected := *c
			return v, func() tea.Msg {
				return messages.CollectionSearchRequested{Collection: selected}
			}
		}
	case key.Matches(msg, v.keymap.Delete):
		if c := v.SelectedCollection(); c != nil {
			return v, v.deleteCollection(c.ID)
		}
	case key.Matches(msg, v.keymap.Reload):
		v.loading = true
		return v, v.loadCollections()
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	return v, nil
}

func (v *View) deleteCollection(id int64) tea.Cmd {
	return func() tea.Msg {
		if v.collectionService == nil {
			return messages.CollectionDeleted{ID: id, Err: errNoCollectionService}
		}
		return messages.CollectionDeleted{ID: id, Err: v.collectionService.Delete(v.ctx, id)}
	}
}

// View renders the collections view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Collections"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading collections..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.collections) == 0:
		b.WriteString(v.styles.Muted.Render("No collections. Create one with: deepdocs collection create <name>"))
	default:
		for i := range v.collections {
			b.WriteString(v.renderCollection(i, &v.collections[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[enter] documents  [s] search  [d] delete  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) renderCollection(index int, c *domain.Collection) string {
	count := fmt.Sprintf("%d docs", v.counts[c.ID])
	nameWidth := max(v.width/3, 12)

	if index == v.selected {
		line := v.styles.Selected.Render(fmt.Sprintf("> %-*s %8s", nameWidth, c.Name, count))
		if c.Description != "" {
			line += v.styles.Muted.Render("  " + c.Description)
		}
		return v.styles.Swatch(c.Color) + line
	}

	line := v.styles.Swatch(c.Color) +
		v.styles.Normal.Render(fmt.Sprintf("  %-*s ", nameWidth, c.Name)) +
		v.styles.Muted.Render(fmt.Sprintf("%8s", count))
	if c.Description != "" {
		line += v.styles.Muted.Render("  " + c.Description)
	}
	return line
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Collections returns the loaded collections.
func (v *View) Collections() []domain.Collection {
	return v.collections
}

// Count returns the member count of a collection.
func (v *View) Count(id int64) int {
	return v.counts[id]
}

// SelectedIndex returns the currently selected collection index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedCollection returns the selected collection, or nil if none.
func (v *View) SelectedCollection() *domain.Collection {
	if v.selected < len(v.collections) {
		return &v.collections[v.selected]
	}
	return nil
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

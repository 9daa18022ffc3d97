// Package menu is the start screen of the TUI.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/styles"
)

// Item is one entry on the start screen. An item without a target
// view quits.
type Item struct {
	Label  string
	Hint   string
	Target messages.ViewType
	Quits  bool
}

// DefaultItems lists the entries in display order. Digits 1..n jump
// straight to an entry.
func DefaultItems() []Item {
	return []Item{
		{Label: "Search", Hint: "Ask a question of your documents", Target: messages.ViewSearch},
		{Label: "Documents", Hint: "Browse the library", Target: messages.ViewDocuments},
		{Label: "Collections", Hint: "Browse documents by collection", Target: messages.ViewCollections},
		{Label: "Settings", Hint: "Embedding, chunking and extraction", Target: messages.ViewSettings},
		{Label: "Help", Target: messages.ViewHelp},
		{Label: "Quit", Quits: true},
	}
}

// View is the start screen.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	items  []Item
	cursor int
	ready  bool
}

// NewView creates the start screen with the cursor on Search.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{styles: s, keymap: keymap.DefaultKeyMap(), items: DefaultItems()}
}

func (v *View) Init() tea.Cmd { return nil }

// Update moves the cursor or emits the chosen navigation.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) tea.Cmd {
	if n, ok := digit(msg); ok && n <= len(v.items) {
		v.cursor = n - 1
		return v.choose()
	}

	switch {
	case key.Matches(msg, v.keymap.Up):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(msg, v.keymap.Down):
		v.cursor = min(v.cursor+1, len(v.items)-1)
	case key.Matches(msg, v.keymap.Select):
		return v.choose()
	case key.Matches(msg, v.keymap.Help):
		return navigate(messages.ViewHelp)
	case key.Matches(msg, v.keymap.Quit):
		return tea.Quit
	}
	return nil
}

func (v *View) choose() tea.Cmd {
	item := v.items[v.cursor]
	if item.Quits {
		return tea.Quit
	}
	return navigate(item.Target)
}

func navigate(target messages.ViewType) tea.Cmd {
	return func() tea.Msg { return messages.ViewChanged{View: target} }
}

// digit returns n for a single key press of 1..9.
func digit(msg tea.KeyMsg) (int, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '1' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("deepdocs") + "\n")
	b.WriteString(v.styles.Muted.Render("Personal documents, searched by meaning") + "\n\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%d %s", i+1, item.Label)
		if i == v.cursor {
			b.WriteString(v.styles.Selected.Render("> " + label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + label))
		}
		if item.Hint != "" {
			b.WriteString(v.styles.Muted.Render("  " + item.Hint))
		}
		b.WriteByte('\n')
	}

	b.WriteString("\n" + v.styles.Help.Render("[j/k] move  [1-6] jump  [enter] open  [?] help  [q] quit"))
	return b.String()
}

// SetDimensions marks the view ready; the menu does not depend on size.
func (v *View) SetDimensions(_, _ int) {
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int { return v.cursor }

// Items returns the menu entries.
func (v *View) Items() []Item { return v.items }

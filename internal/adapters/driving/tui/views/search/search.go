// Package search provides the main search view for the TUI.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
)

// Actions offered on a selected result.
const (
	ActionShowContent = "Show content"
	ActionOpen        = "Open document"
	ActionCancel      = "Cancel"
)

// ActionMenu is the overlay listing actions for one result.
type ActionMenu struct {
	actions  []string
	selected int
	result   domain.SearchResult
}

// View represents the search view with input, results list, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Field
	list      *list.ResultList
	statusbar *status.Bar

	searchService   driving.SearchService
	documentService driving.DocumentService
	ctx             context.Context

	// scope restricts searches to one collection; nil means the library.
	scope *domain.Collection

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true while typing, false while navigating results
	actionMenu *ActionMenu
}

// NewView creates a new search view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	documentService driving.DocumentService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:          s,
		keymap:          km,
		input:           input.NewSearchInput(s),
		list:            list.NewResultList(s),
		statusbar:       status.NewBar(s, km),
		searchService:   searchService,
		documentService: documentService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
		focusInput:      true,
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.DocumentOpened:
		if msg.Err != nil {
			v.statusbar.Failed(fmt.Errorf("open: %w", msg.Err))
		} else {
			v.statusbar.Note("Opened document")
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.Failed(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.actionMenu != nil {
		return v.handleActionMenuKey(msg)
	}

	if key.Matches(msg, v.keymap.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.statusbar.Searching()
			v.focusInput = false
			v.input.Blur()
			return v, v.performSearch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keymap.Actions):
		if result := v.list.SelectedResult(); result != nil {
			v.actionMenu = &ActionMenu{
				actions: []string{ActionShowContent, ActionOpen, ActionCancel},
				result:  *result,
			}
		}
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
	case key.Matches(msg, v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	}

	return v, nil
}

func (v *View) handleActionMenuKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		if v.actionMenu.selected > 0 {
			v.actionMenu.selected--
		}
	case key.Matches(msg, v.keymap.Down):
		if v.actionMenu.selected < len(v.actionMenu.actions)-1 {
			v.actionMenu.selected++
		}
	case key.Matches(msg, v.keymap.Select):
		action := v.actionMenu.actions[v.actionMenu.selected]
		result := v.actionMenu.result
		v.actionMenu = nil
		return v, v.executeAction(action, result)
	case key.Matches(msg, v.keymap.Back):
		v.actionMenu = nil
	}
	return v, nil
}

func (v *View) executeAction(action string, result domain.SearchResult) tea.Cmd {
	switch action {
	case ActionShowContent:
		return func() tea.Msg {
			return messages.DocumentSelected{Document: result.Document, From: messages.ViewSearch}
		}
	case ActionOpen:
		return v.openDocument(result.Document.ID)
	}
	return nil
}

func (v *View) openDocument(id int64) tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentOpened{DocumentID: id, Err: ErrNoDocumentService}
		}
		return messages.DocumentOpened{DocumentID: id, Err: v.documentService.Open(v.ctx, id)}
	}
}

func (v *View) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		if v.searchService == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		var (
			collectionID int64
			results      []domain.SearchResult
			err          error
		)
		start := time.Now()
		if v.scope != nil {
			collectionID = v.scope.ID
			results, err = v.searchService.SearchInCollection(v.ctx, collectionID, query, 0)
		} else {
			results, err = v.searchService.Search(v.ctx, query, domain.SearchOptions{})
		}
		return messages.SearchCompleted{
			Query:        query,
			CollectionID: collectionID,
			Results:      results,
			Took:         time.Since(start),
			Err:          err,
		}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.Failed(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.Results(len(msg.Results), msg.Took)
	v.focusInput = false
	v.input.Blur()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := v.styles.Title.Render("deepdocs")
	if v.scope != nil {
		title += v.styles.Muted.Render("  in " + v.scope.Name)
	}
	sections := []string{
		title, "",
		v.input.View(), "",
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View())

	if v.actionMenu != nil {
		sections = append(sections, "", v.renderActionMenu())
	}

	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderActionMenu() string {
	lines := make([]string, 0, len(v.actionMenu.actions)+2)
	lines = append(lines, v.styles.Subtitle.Render(v.actionMenu.result.Document.Name), "")
	for i, action := range v.actionMenu.actions {
		if i == v.actionMenu.selected {
			lines = append(lines, v.styles.Selected.Render("> "+action))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+action))
		}
	}
	return v.styles.Border.Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the current search results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// SelectedResult returns the currently selected result.
func (v *View) SelectedResult() *domain.SearchResult {
	return v.list.SelectedResult()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// StatusMessage returns the message shown in the status bar.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Reset returns the view to an empty query with the input focused.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.err = nil
	v.actionMenu = nil
	v.scope = nil
	v.statusbar.Reset()
	v.statusbar.SetScope("")
}

// SetScope restricts further searches to a collection. Nil searches the
// whole library.
func (v *View) SetScope(c *domain.Collection) {
	v.scope = c
	if c == nil {
		v.statusbar.SetScope("")
		return
	}
	v.statusbar.SetScope(c.Name)
}

// Scope returns the collection searches are restricted to, if any.
func (v *View) Scope() *domain.Collection {
	return v.scope
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// ActionMenuVisible reports whether the result action overlay is shown.
func (v *View) ActionMenuVisible() bool {
	return v.actionMenu != nil
}

package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/views/collections"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/views/doccontent"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/views/docdetails"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView        *menu.View
	searchView      *search.View
	documentsView   *documents.View
	collectionsView *collections.View
	docContentView  *doccontent.View
	docDetailsView  *docdetails.View
	settingsView    *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// Mirrors of the search view state.
	query         string
	results       []domain.SearchResult
	selectedIndex int

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:           ports,
		ctx:             context.Background(),
		styles:          s,
		menuView:        menu.NewView(s),
		searchView:      search.NewView(s, keymap.DefaultKeyMap(), ports.Search, ports.Document),
		documentsView:   documents.NewView(s, ports.Document, ports.Collection, ports.Indexing),
		collectionsView: collections.NewView(s, ports.Collection),
		docContentView:  doccontent.NewView(s, ports.Document),
		docDetailsView:  docdetails.NewView(s),
		settingsView:    settings.NewView(s, ports.Settings),
		currentView:     messages.ViewMenu,
	}, nil
}

// WithContext sets the context used by every view for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	a.collectionsView.WithContext(ctx)
	a.docContentView.WithContext(ctx)
	a.settingsView.WithContext(ctx)
	return a
}

// SearchCollection opens the search view restricted to c.
func (a *App) SearchCollection(c domain.Collection) {
	a.searchView.Reset()
	a.searchView.SetScope(&c)
	a.syncSearch()
	a.currentView = messages.ViewSearch
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen, tea.SetWindowTitle("deepdocs")}
	if a.currentView == messages.ViewSearch {
		cmds = append(cmds, a.searchView.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo,funlen // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc || msg.String() == "q" {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.syncSearch()
		return a, cmd

	case messages.ViewChanged:
		previous := a.currentView
		a.currentView = msg.View
		fromMenu := previous == messages.ViewMenu
		switch msg.View {
		case messages.ViewSearch:
			if fromMenu {
				a.searchView.Reset()
				a.syncSearch()
			}
			return a, a.searchView.Init()
		case messages.ViewDocuments:
			if fromMenu {
				return a, a.documentsView.ShowLibrary()
			}
		case messages.ViewCollections:
			return a, a.collectionsView.Init()
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a, a.settingsView.Init()
		case messages.ViewMenu, messages.ViewHelp,
			messages.ViewDocContent, messages.ViewDocDetails:
		}
		return a, nil

	case messages.CollectionSelected:
		a.currentView = messages.ViewDocuments
		return a, a.documentsView.SetCollection(msg.Collection)

	case messages.CollectionSearchRequested:
		a.SearchCollection(msg.Collection)
		return a, a.searchView.Init()

	case messages.DocumentSelected:
		a.currentView = messages.ViewDocContent
		return a, a.docContentView.SetDocument(msg.Document, msg.From)

	case messages.DocumentDetailsLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			a.documentsView, cmd = a.documentsView.Update(messages.ErrorOccurred{Err: msg.Err})
			return a, cmd
		}
		a.docDetailsView.SetDetails(msg.Details)
		a.currentView = messages.ViewDocDetails
		return a, nil

	case messages.DocumentsLoaded, messages.DocumentIndexed, messages.DocumentDeleted:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.DocumentContentLoaded:
		a.docContentView, cmd = a.docContentView.Update(msg)
		return a, cmd

	case messages.CollectionsLoaded, messages.CollectionDeleted:
		a.collectionsView, cmd = a.collectionsView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingSaved, messages.EmbeddingChecked:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward delivers msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
		a.syncSearch()
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewCollections:
		a.collectionsView, cmd = a.collectionsView.Update(msg)
	case messages.ViewDocContent:
		a.docContentView, cmd = a.docContentView.Update(msg)
	case messages.ViewDocDetails:
		a.docDetailsView, cmd = a.docDetailsView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

func (a *App) syncSearch() {
	a.query = a.searchView.Query()
	a.results = a.searchView.Results()
	a.selectedIndex = a.searchView.SelectedIndex()
	if err := a.searchView.Err(); err != nil {
		a.err = err
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewCollections:
		return a.collectionsView.View()
	case messages.ViewDocContent:
		return a.docContentView.View()
	case messages.ViewDocDetails:
		return a.docDetailsView.View()
	case messages.ViewSettings:
		return a.settingsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	var keys strings.Builder
	for _, group := range keymap.DefaultKeyMap().FullHelp() {
		for _, kb := range group {
			fmt.Fprintf(&keys, "  %-11s %s\n", kb.Help().Key, kb.Help().Desc)
		}
		keys.WriteByte('\n')
	}

	return a.styles.Title.Render("Help") + "\n\nKeys:\n" + keys.String() + `Menu:
  1-6         Jump to an entry

Search:
  (type)      Describe what you are looking for
  enter       Run the query
  n, /        New search from the results

Documents:
  enter       Content, details, open, reindex, delete
  r           Reload

Collections:
  enter       Show members
  s           Search within the collection
  d           Delete collection

Settings:
  enter       Edit value
  c           Check the embedding provider

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Query returns the current search query.
func (a *App) Query() string {
	return a.query
}

// Results returns the current search results.
func (a *App) Results() []domain.SearchResult {
	return a.results
}

// SelectedIndex returns the currently selected result index.
func (a *App) SelectedIndex() int {
	return a.selectedIndex
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.collectionsView.SetDimensions(width, height)
	a.docContentView.SetDimensions(width, height)
	a.docDetailsView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}

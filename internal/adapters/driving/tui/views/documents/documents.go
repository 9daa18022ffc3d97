// Package documents provides the documents list view component for the TUI.
package documents

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

// ActionOption represents a document action.
type ActionOption int

const (
	ActionShowContent ActionOption = iota
	ActionShowDetails
	ActionOpenDocument
	ActionReindex
	ActionDelete
	ActionCancel
)

var actionLabels = []string{
	ActionShowContent:  "Show content",
	ActionShowDetails:  "Show details",
	ActionOpenDocument: "Open document",
	ActionReindex:      "Reindex",
	ActionDelete:       "Delete from library",
	ActionCancel:       "Cancel",
}

var (
	errNoDocumentService   = errors.New("document service not available")
	errNoIndexingService   = errors.New("indexing service not available")
	errNoCollectionService = errors.New("collection service not available")
)

// View lists the library, or the members of one collection.
type View struct {
	styles            *styles.Styles
	keymap            *keymap.KeyMap
	documentService   driving.DocumentService
	collectionService driving.CollectionService
	indexingService   driving.IndexingService
	ctx               context.Context

	collection   *domain.Collection
	documents    []domain.Document
	selected     int
	width        int
	height       int
	ready        bool
	err          error
	notice       string
	loading      bool
	showingMenu  bool
	menuSelected ActionOption
	scrollOffset int
}

// NewView creates a new documents view.
func NewView(
	s *styles.Styles,
	documentService driving.DocumentService,
	collectionService driving.CollectionService,
	indexingService driving.IndexingService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:            s,
		keymap:            keymap.DefaultKeyMap(),
		documentService:   documentService,
		collectionService: collectionService,
		indexingService:   indexingService,
		ctx:               context.Background(),
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// ShowLibrary switches to the whole library and loads it.
func (v *View) ShowLibrary() tea.Cmd {
	v.collection = nil
	v.reset()
	return v.loadDocuments()
}

// SetCollection switches to the members of c and loads them.
func (v *View) SetCollection(c domain.Collection) tea.Cmd {
	v.collection = &c
	v.reset()
	return v.loadDocuments()
}

func (v *View) reset() {
	v.documents = nil
	v.selected = 0
	v.scrollOffset = 0
	v.err = nil
	v.notice = ""
	v.showingMenu = false
	v.loading = true
}

func (v *View) loadDocuments() tea.Cmd {
	collection := v.collection
	return func() tea.Msg {
		if collection != nil {
			if v.collectionService == nil {
				return messages.DocumentsLoaded{CollectionID: collection.ID, Err: errNoCollectionService}
			}
			docs, err := v.collectionService.Documents(v.ctx, collection.ID)
			return messages.DocumentsLoaded{CollectionID: collection.ID, Documents: docs, Err: err}
		}

		if v.documentService == nil {
			return messages.DocumentsLoaded{Err: errNoDocumentService}
		}
		docs, err := v.documentService.List(v.ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (v *View) collectionID() int64 {
	if v.collection == nil {
		return 0
	}
	return v.collection.ID
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.showingMenu {
			return v.handleMenuKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		if msg.CollectionID != v.collectionID() {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.documents = msg.Documents
			v.selected = min(v.selected, max(len(v.documents)-1, 0))
			v.adjustScroll()
		}
		return v, nil

	case messages.DocumentIndexed:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = fmt.Sprintf("Reindexed document %d: %d chunks", msg.DocumentID, msg.Chunks)
		return v, nil

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.notice = fmt.Sprintf("Deleted document %d", msg.DocumentID)
		return v, v.loadDocuments()

	case messages.DocumentOpened:
		if msg.Err != nil {
			v.err = msg.Err
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case key.Matches(msg, v.keymap.Down):
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case key.Matches(msg, v.keymap.Actions):
		if len(v.documents) > 0 {
			v.showingMenu = true
			v.menuSelected = ActionShowContent
		}
	case key.Matches(msg, v.keymap.Reload):
		v.loading = true
		v.notice = ""
		return v, v.loadDocuments()
	case key.Matches(msg, v.keymap.Back):
		back := messages.ViewMenu
		if v.collection != nil {
			back = messages.ViewCollections
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: back}
		}
	}

	return v, nil
}

func (v *View) handleMenuKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		if v.menuSelected > ActionShowContent {
			v.menuSelected--
		}
	case key.Matches(msg, v.keymap.Down):
		if v.menuSelected < ActionCancel {
			v.menuSelected++
		}
	case key.Matches(msg, v.keymap.Select):
		return v.handleMenuSelect()
	case key.Matches(msg, v.keymap.Back):
		v.showingMenu = false
	}

	return v, nil
}

func (v *View) handleMenuSelect() (*View, tea.Cmd) {
	v.showingMenu = false
	doc := v.SelectedDocument()
	if doc == nil {
		return v, nil
	}

	switch v.menuSelected {
	case ActionShowContent:
		selected := *doc
		return v, func() tea.Msg {
			return messages.DocumentSelected{Document: selected, From: messages.ViewDocuments}
		}
	case ActionShowDetails:
		return v, v.loadDocDetails(doc.ID)
	case ActionOpenDocument:
		return v, v.openDocument(doc.ID)
	case ActionReindex:
		v.notice = "Reindexing " + doc.Name + "..."
		return v, v.reindexDocument(doc.ID)
	case ActionDelete:
		return v, v.deleteDocument(doc.ID)
	case ActionCancel:
	}

	return v, nil
}

func (v *View) loadDocDetails(id int64) tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentDetailsLoaded{DocumentID: id, Err: errNoDocumentService}
		}
		details, err := v.documentService.GetDetails(v.ctx, id)
		return messages.DocumentDetailsLoaded{DocumentID: id, Details: details, Err: err}
	}
}

func (v *View) openDocument(id int64) tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentOpened{DocumentID: id, Err: errNoDocumentService}
		}
		return messages.DocumentOpened{DocumentID: id, Err: v.documentService.Open(v.ctx, id)}
	}
}

func (v *View) reindexDocument(id int64) tea.Cmd {
	return func() tea.Msg {
		if v.indexingService == nil {
			return messages.DocumentIndexed{DocumentID: id, Err: errNoIndexingService}
		}
		n, err := v.indexingService.Reindex(v.ctx, id)
		return messages.DocumentIndexed{DocumentID: id, Chunks: n, Err: err}
	}
}

func (v *View) deleteDocument(id int64) tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentDeleted{DocumentID: id, Err: errNoDocumentService}
		}
		return messages.DocumentDeleted{DocumentID: id, Err: v.documentService.Delete(v.ctx, []int64{id})}
	}
}

func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

func (v *View) visibleItemCount() int {
	return max(v.height-8, 1)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.title()))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		if v.collection != nil {
			b.WriteString(v.styles.Muted.Render("This collection is empty."))
		} else {
			b.WriteString(v.styles.Muted.Render("No documents yet. Add some with: deepdocs add <path>"))
		}
	case v.showingMenu:
		b.WriteString(v.renderActionMenu())
		return b.String()
	default:
		v.renderList(&b)
	}

	if v.notice != "" && v.err == nil {
		b.WriteString("\n\n")
		b.WriteString(v.styles.Success.Render(v.notice))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] actions  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) title() string {
	if v.collection != nil {
		return fmt.Sprintf("%s %s (%d)", v.styles.Swatch(v.collection.Color), v.collection.Name, len(v.documents))
	}
	return fmt.Sprintf("Documents (%d)", len(v.documents))
}

func (v *View) renderList(b *strings.Builder) {
	visible := v.visibleItemCount()
	end := min(v.scrollOffset+visible, len(v.documents))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.renderDocument(i, &v.documents[i]))
		b.WriteString("\n")
	}

	if len(v.documents) > visible {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1, end, len(v.documents))))
	}
}

func (v *View) renderDocument(index int, doc *domain.Document) string {
	nameWidth := max(v.width/2-4, 10)
	name := fitRight(doc.Name, nameWidth)
	path := fitLeft(doc.Path, max(v.width/2-4, 10))

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %-*s  %s", nameWidth, name, path))
	}
	return v.styles.Normal.Render(fmt.Sprintf("  %-*s  ", nameWidth, name)) + v.styles.Muted.Render(path)
}

func (v *View) renderActionMenu() string {
	var b strings.Builder

	if doc := v.SelectedDocument(); doc != nil {
		b.WriteString(v.styles.Subtitle.Render("Actions for: " + doc.Name))
		b.WriteString("\n\n")
	}

	for action := ActionShowContent; action <= ActionCancel; action++ {
		if v.menuSelected == action {
			b.WriteString(v.styles.Selected.Render("> " + actionLabels[action]))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + actionLabels[action]))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] cancel"))
	return b.String()
}

func fitRight(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func fitLeft(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return "..." + string(runes[len(runes)-n+3:])
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Documents returns the current list of documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// Collection returns the collection being browsed, or nil for the library.
func (v *View) Collection() *domain.Collection {
	return v.collection
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected document.
func (v *View) SelectedDocument() *domain.Document {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

// IsShowingMenu returns true if the action menu is visible.
func (v *View) IsShowingMenu() bool {
	return v.showingMenu
}

// Notice returns the last informational message.
func (v *View) Notice() string {
	return v.notice
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"time"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
)

// SearchCompleted carries search results back to the model.
// CollectionID is 0 when the whole library was searched.
type SearchCompleted struct {
	Query        string
	CollectionID int64
	Results      []domain.SearchResult
	Took         time.Duration
	Err          error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewDocuments lists the library or the members of a collection.
	ViewDocuments
	// ViewCollections lists collections.
	ViewCollections
	// ViewDocContent shows document content.
	ViewDocContent
	// ViewDocDetails shows document metadata.
	ViewDocDetails
	// ViewSettings is the settings view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewDocuments:
		return "documents"
	case ViewCollections:
		return "collections"
	case ViewDocContent:
		return "doc_content"
	case ViewDocDetails:
		return "doc_details"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// DocumentsLoaded carries a document listing.
// CollectionID is 0 for the whole library.
type DocumentsLoaded struct {
	CollectionID int64
	Documents    []domain.Document
	Err          error
}

// DocumentSelected signals a document was chosen for reading.
type DocumentSelected struct {
	Document domain.Document
	// From is the view to return to.
	From ViewType
}

// DocumentContentLoaded carries the text of a document.
type DocumentContentLoaded struct {
	DocumentID int64
	Content    string
	Err        error
}

// DocumentDetailsLoaded carries the metadata of a document.
type DocumentDetailsLoaded struct {
	DocumentID int64
	Details    *driving.DocumentDetails
	Err        error
}

// DocumentIndexed signals a reindex finished.
type DocumentIndexed struct {
	DocumentID int64
	Chunks     int
	Err        error
}

// DocumentDeleted signals a document was removed from the library.
type DocumentDeleted struct {
	DocumentID int64
	Err        error
}

// DocumentOpened signals the document was handed to the default application.
type DocumentOpened struct {
	DocumentID int64
	Err        error
}

// CollectionsLoaded carries the list of collections and their member counts.
type CollectionsLoaded struct {
	Collections []domain.Collection
	Counts      map[int64]int
	Err         error
}

// CollectionSelected signals a collection was chosen for browsing.
type CollectionSelected struct {
	Collection domain.Collection
}

// CollectionSearchRequested opens the search view scoped to a collection.
type CollectionSearchRequested struct {
	Collection domain.Collection
}

// CollectionDeleted signals a collection was removed.
type CollectionDeleted struct {
	ID  int64
	Err error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingSaved signals a single setting was written.
type SettingSaved struct {
	Key string
	Err error
}

// EmbeddingChecked carries the result of an embedding provider ping.
type EmbeddingChecked struct {
	Err error
}

package mcp

import (
	"context"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error

	lastQuery        string
	lastOpts         domain.SearchOptions
	lastCollectionID int64
	lastTopK         int
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

func (m *mockSearchService) SearchInCollection(
	_ context.Context,
	collectionID int64,
	query string,
	topK int,
) ([]domain.SearchResult, error) {
	m.lastCollectionID = collectionID
	m.lastQuery = query
	m.lastTopK = topK
	return m.results, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	content   string
	err       error
}

func (m *mockDocumentService) Add(_ context.Context, _ []string) ([]domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ int64) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ int64) (string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) GetDetails(_ context.Context, _ int64) (*driving.DocumentDetails, error) {
	return nil, m.err
}

func (m *mockDocumentService) UpdateMetadata(_ context.Context, _ int64, _ domain.DocumentMetadataUpdate) error {
	return m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ []int64) error {
	return m.err
}

func (m *mockDocumentService) DeleteByPath(_ context.Context, _ string) (bool, error) {
	return false, m.err
}

func (m *mockDocumentService) Open(_ context.Context, _ int64) error {
	return m.err
}

func (m *mockDocumentService) PruneMissing(_ context.Context) (int, error) {
	return 0, m.err
}

// mockCollectionService is a mock implementation of driving.CollectionService.
type mockCollectionService struct {
	collections []domain.Collection
	members     map[int64][]domain.Document
	err         error
}

func (m *mockCollectionService) Create(_ context.Context, c domain.Collection) (*domain.Collection, error) {
	return &c, m.err
}

func (m *mockCollectionService) Get(_ context.Context, _ int64) (*domain.Collection, error) {
	return nil, m.err
}

func (m *mockCollectionService) List(_ context.Context) ([]domain.Collection, error) {
	return m.collections, m.err
}

func (m *mockCollectionService) Update(
	_ context.Context, _ int64, _ domain.CollectionUpdate,
) (*domain.Collection, error) {
	return nil, m.err
}

func (m *mockCollectionService) Delete(_ context.Context, _ int64) error {
	return m.err
}

func (m *mockCollectionService) AddDocuments(_ context.Context, _ int64, _ []int64) error {
	return m.err
}

func (m *mockCollectionService) RemoveDocument(_ context.Context, _, _ int64) error {
	return m.err
}

func (m *mockCollectionService) Documents(_ context.Context, collectionID int64) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.members[collectionID]; !ok {
		return nil, domain.ErrNotFound
	}
	return m.members[collectionID], nil
}

func (m *mockCollectionService) Export(
	_ context.Context, _ int64, _ driving.ExportFormat, _ string,
) (*driving.ExportResult, error) {
	return nil, m.err
}

// mockIndexingService is a mock implementation of driving.IndexingService.
type mockIndexingService struct {
	chunks    int
	status    domain.IndexStatus
	err       error
	reindexed bool
}

func (m *mockIndexingService) EnsureIndexed(_ context.Context, _ int64) (int, error) {
	return m.chunks, m.err
}

func (m *mockIndexingService) Reindex(_ context.Context, _ int64) (int, error) {
	m.reindexed = true
	return m.chunks, m.err
}

func (m *mockIndexingService) Status(_ context.Context, _ int64) (domain.IndexStatus, error) {
	return m.status, m.err
}

func (m *mockIndexingService) IndexAll(_ context.Context, _ int) (driving.IndexReport, error) {
	return driving.IndexReport{}, m.err
}

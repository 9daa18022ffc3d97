// Command deepdocs is a personal document manager with local semantic search.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/deepdocs/internal/adapters/driven/ai"
	"github.com/custodia-labs/deepdocs/internal/adapters/driven/config/file"
	"github.com/custodia-labs/deepdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/deepdocs/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/cli"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
	"github.com/custodia-labs/deepdocs/internal/core/services"
	"github.com/custodia-labs/deepdocs/internal/extractors"
	"github.com/custodia-labs/deepdocs/internal/logger"
	"github.com/custodia-labs/deepdocs/internal/postprocessors"
	"github.com/custodia-labs/deepdocs/internal/scanner"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env file is normal.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli.SetBuilder(build)
	if err := cli.Execute(ctx, version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

// build wires adapters into services once the persistent flags are known.
func build(_ context.Context, opts cli.Options) (*cli.Services, error) {
	var configStore driven.ConfigStore
	if opts.Ephemeral {
		configStore = memory.NewConfigStore()
	} else {
		store, err := file.NewConfigStore("")
		if err != nil {
			return nil, fmt.Errorf("opening config: %w", err)
		}
		configStore = store
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		logger.Warn("Invalid settings, using defaults where needed: %v", err)
		defaults := settingsService.GetDefaults()
		settings = &defaults
	}

	var (
		docStore        driven.DocumentStore
		collectionStore driven.CollectionStore
		database        cli.Database
		closeStore      = func() error { return nil }
		ocrDir          string
	)
	if opts.Ephemeral {
		docStore, collectionStore = memory.NewStores()
	} else {
		dataDir := opts.DataDir
		if dataDir == "" {
			if dataDir, err = sqlite.DefaultDataDir(); err != nil {
				return nil, err
			}
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		logger.Debug("Using database %s", store.Path())

		docStore = store.DocumentStore()
		collectionStore = store.CollectionStore()
		db := &sqliteDatabase{store: store, dataDir: dataDir}
		database = db
		closeStore = db.Close
		ocrDir = filepath.Join(dataDir, "ocr")
	}

	fileScanner := scanner.New()
	extractor := extractors.NewDefault(settings.Extraction, ocrDir)
	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)
	processor, err := processors.Build(postprocessors.ChunkerName, postprocessors.ChunkerConfig(settings.Chunking))
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("configuring chunker: %w", err)
	}
	embedder := ai.CreateLazyEmbeddingService(settings.Embedding)

	indexingService := services.NewIndexingService(docStore, extractor, processor, embedder, fileScanner)

	documentService := services.NewDocumentService(docStore, collectionStore, fileScanner)
	documentService.SetIndexingService(indexingService)
	documentService.SetExtractor(extractor)
	documentService.SetChunkOverlap(settings.Chunking.Overlap)

	searchService := services.NewSearchService(docStore, collectionStore, embedder)
	searchService.SetDefaultTopK(settings.Search.TopK)

	return &cli.Services{
		Document:   documentService,
		Collection: services.NewCollectionService(collectionStore, docStore, fileScanner),
		Indexing:   indexingService,
		Search:     searchService,
		Settings:   settingsService,
		Database:   database,
		Close: func() error {
			return errors.Join(embedder.Close(), closeStore())
		},
	}, nil
}

// sqliteDatabase adapts the SQLite store to backup and restore.
// Restore closes the store first; the process must exit afterwards.
type sqliteDatabase struct {
	store   *sqlite.Store
	dataDir string
	closed  bool
}

func (d *sqliteDatabase) Backup(ctx context.Context, dest string) error {
	return d.store.Backup(ctx, dest)
}

func (d *sqliteDatabase) Restore(ctx context.Context, src string) error {
	if err := d.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return sqlite.Restore(ctx, src, d.dataDir)
}

func (d *sqliteDatabase) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.store.Close()
}

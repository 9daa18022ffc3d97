// Package cli provides the cobra command tree for deepdocs.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

// version is set at build time via ldflags or by Execute.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	dataDir   string
	ephemeral bool
)

// Services used by commands. Set by the composition root.
var (
	documentService   driving.DocumentService
	collectionService driving.CollectionService
	indexingService   driving.IndexingService
	searchService     driving.SearchService
	settingsService   driving.SettingsService
	database          Database
)

// Database exposes backup and restore of the durable store.
type Database interface {
	// Backup writes a consistent copy of the database to dest.
	Backup(ctx context.Context, dest string) error

	// Restore replaces the database with the backup at src.
	Restore(ctx context.Context, src string) error
}

// Services groups the services the commands depend on.
type Services struct {
	Document   driving.DocumentService
	Collection driving.CollectionService
	Indexing   driving.IndexingService
	Search     driving.SearchService
	Settings   driving.SettingsService

	// Database is nil for ephemeral runs.
	Database Database

	// Close releases the stores and the embedding model.
	Close func() error
}

// Options carries the persistent flag values to the Builder.
type Options struct {
	DataDir   string
	Ephemeral bool
}

// Builder constructs services once flags have been parsed.
type Builder func(ctx context.Context, opts Options) (*Services, error)

var (
	builder       Builder
	closeServices func() error
)

var rootCmd = &cobra.Command{
	Use:   "deepdocs",
	Short: "Personal document manager with local semantic search",
	Long: `deepdocs keeps a library of your local files and answers natural-language
queries against their contents. Text is extracted, split into overlapping
chunks and embedded on your machine; nothing leaves it.

Get started:
  deepdocs add ~/Documents/reports
  deepdocs index --all
  deepdocs search "quarterly budget"`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding documents.db (default ~/.deepdocs/data)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the library in memory for this run only")
}

// SetServices installs services directly, bypassing the Builder.
func SetServices(s *Services) {
	documentService = s.Document
	collectionService = s.Collection
	indexingService = s.Indexing
	searchService = s.Search
	settingsService = s.Settings
	database = s.Database
	closeServices = s.Close
}

// SetBuilder registers the function that constructs services after flag parsing.
func SetBuilder(b Builder) {
	builder = b
}

// Execute runs the root command.
func Execute(ctx context.Context, buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	defer func() {
		if closeServices != nil {
			if err := closeServices(); err != nil {
				logger.Warn("closing services: %v", err)
			}
			closeServices = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if builder == nil || documentService != nil {
		return nil
	}

	services, err := builder(commandContext(cmd), Options{DataDir: dataDir, Ephemeral: ephemeral})
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseIDs converts document or collection id arguments.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}

var errNotConfigured = errors.New("not configured")

func requireService(name string, configured bool) error {
	if !configured {
		return fmt.Errorf("%s service %w", name, errNotConfigured)
	}
	return nil
}

// stdoutIsTerminal reports whether styled output can be used.
func stdoutIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && isTerminal(f)
}

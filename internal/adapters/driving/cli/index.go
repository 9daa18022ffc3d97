package cli

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

var (
	indexAll     bool
	indexForce   bool
	indexWorkers int
)

var indexCmd = &cobra.Command{
	Use:   "index [doc-id...]",
	Short: "Extract, chunk and embed documents",
	Long: `Builds the searchable chunks for documents. Documents whose chunks are
current are skipped unless --force is given.

  deepdocs index 3 7        index two documents
  deepdocs index --all      index the whole library
  deepdocs index --force 3  rebuild chunks for document 3
  deepdocs index -a -f      rebuild every document, e.g. after changing model`,
	RunE: runIndex,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status [doc-id...]",
	Short: "Show index status of documents",
	Long:  `Reports whether each document is indexed, stale, or not yet indexed. Without ids every document is shown.`,
	RunE:  runIndexStatus,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexAll, "all", "a", false, "index every document in the library")
	indexCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "rebuild chunks even when current")
	indexCmd.Flags().IntVarP(&indexWorkers, "workers", "w", 0, "concurrent documents for --all (default from settings)")
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if err := requireService("indexing", indexingService != nil); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	if indexAll {
		if len(args) > 0 {
			return errors.New("pass document ids or --all, not both")
		}
		if !indexForce {
			return runIndexAll(cmd)
		}
	} else if len(args) == 0 {
		return errors.New("no documents given: pass document ids or --all")
	}

	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	if indexAll {
		// Forced rebuilds go one at a time through Reindex.
		if ids, err = allDocumentIDs(cmd); err != nil {
			return err
		}
	}

	var errs []error
	total := 0
	for _, id := range ids {
		var n int
		if indexForce {
			n, err = indexingService.Reindex(ctx, id)
		} else {
			n, err = indexingService.EnsureIndexed(ctx, id)
		}
		if err != nil {
			cmd.Printf("  [%d] failed: %v\n", id, err)
			errs = append(errs, fmt.Errorf("document %d: %w", id, err))
			continue
		}
		if n == 0 {
			cmd.Printf("  [%d] up to date\n", id)
		} else {
			cmd.Printf("  [%d] %d chunks\n", id, n)
		}
		total += n
	}

	cmd.Printf("Indexed %d chunks\n", total)
	return errors.Join(errs...)
}

func allDocumentIDs(cmd *cobra.Command) ([]int64, error) {
	if err := requireService("document", documentService != nil); err != nil {
		return nil, err
	}
	docs, err := documentService.List(commandContext(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	ids := make([]int64, 0, len(docs))
	for i := range docs {
		ids = append(ids, docs[i].ID)
	}
	return ids, nil
}

func runIndexAll(cmd *cobra.Command) error {
	workers := indexWorkers
	if workers <= 0 && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			workers = settings.Indexing.Workers
		}
	}

	// Per-document failures come back joined in err and listed in the report.
	report, err := indexingService.IndexAll(commandContext(cmd), workers)
	if err != nil && len(report.Failed) == 0 {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %d of %d documents (%d chunks)\n", report.Indexed, report.Documents, report.Chunks)
	if len(report.Failed) == 0 {
		return nil
	}

	cmd.Printf("%d documents failed:\n", len(report.Failed))
	for _, id := range slices.Sorted(maps.Keys(report.Failed)) {
		cmd.Printf("  [%d] %v\n", id, report.Failed[id])
	}
	return fmt.Errorf("%d documents failed to index", len(report.Failed))
}

func runIndexStatus(cmd *cobra.Command, args []string) error {
	if err := requireService("indexing", indexingService != nil); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		if err := requireService("document", documentService != nil); err != nil {
			return err
		}
		docs, err := documentService.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}
		for i := range docs {
			ids = append(ids, docs[i].ID)
		}
	}

	if len(ids) == 0 {
		cmd.Println("No documents.")
		return nil
	}

	for _, id := range ids {
		status, err := indexingService.Status(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get status of document %d: %w", id, err)
		}
		cmd.Printf("  [%d] %s\n", id, status)
	}
	return nil
}

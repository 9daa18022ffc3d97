package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
)

var collectionCmd = &cobra.Command{
	Use:     "collection",
	Aliases: []string{"col"},
	Short:   "Manage document collections",
	Long:    `Collections group documents so they can be searched or exported together.`,
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionCreate,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections, newest first",
	Args:  cobra.NoArgs,
	RunE:  runCollectionList,
}

var collectionShowCmd = &cobra.Command{
	Use:   "show [collection-id]",
	Short: "Show a collection and its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionShow,
}

var collectionUpdateCmd = &cobra.Command{
	Use:   "update [collection-id]",
	Short: "Rename or describe a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionUpdate,
}

var collectionRemoveCmd = &cobra.Command{
	Use:   "rm [collection-id]",
	Short: "Delete a collection (documents are kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionRemove,
}

var collectionAddCmd = &cobra.Command{
	Use:   "add [collection-id] [doc-id...]",
	Short: "Add documents to a collection",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCollectionAdd,
}

var collectionRemoveDocCmd = &cobra.Command{
	Use:   "remove [collection-id] [doc-id]",
	Short: "Remove a document from a collection",
	Args:  cobra.ExactArgs(2),
	RunE:  runCollectionRemoveDoc,
}

var collectionSearchCmd = &cobra.Command{
	Use:   "search [collection-id] [query]",
	Short: "Search within a collection",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCollectionSearch,
}

var collectionExportCmd = &cobra.Command{
	Use:   "export [collection-id] [dest]",
	Short: "Export collection files",
	Long: `Exports the files of a collection.

Formats:
  folder  copy files into dest (created if needed)
  zip     write a single archive to dest
  csv     write id, name and path of each document to dest

Documents whose file is missing are skipped and reported.`,
	Args: cobra.ExactArgs(2),
	RunE: runCollectionExport,
}

var (
	collectionDescription string
	collectionColor       string
	collectionName        string
	collectionLimit       int
	collectionFormat      string
)

func init() {
	collectionCreateCmd.Flags().StringVarP(&collectionDescription, "description", "d", "", "collection description")
	collectionCreateCmd.Flags().StringVar(&collectionColor, "color", "", "display color (e.g. #3b82f6)")

	collectionUpdateCmd.Flags().StringVar(&collectionName, "name", "", "new name")
	collectionUpdateCmd.Flags().StringVarP(&collectionDescription, "description", "d", "", "new description")
	collectionUpdateCmd.Flags().StringVar(&collectionColor, "color", "", "new display color")

	collectionSearchCmd.Flags().IntVarP(&collectionLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	collectionExportCmd.Flags().StringVar(&collectionFormat, "format", string(driving.ExportFolder), "export format: folder, zip or csv")

	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionShowCmd)
	collectionCmd.AddCommand(collectionUpdateCmd)
	collectionCmd.AddCommand(collectionRemoveCmd)
	collectionCmd.AddCommand(collectionAddCmd)
	collectionCmd.AddCommand(collectionRemoveDocCmd)
	collectionCmd.AddCommand(collectionSearchCmd)
	collectionCmd.AddCommand(collectionExportCmd)
	rootCmd.AddCommand(collectionCmd)
}

func runCollectionCreate(cmd *cobra.Command, args []string) error {
	if err := requireService("collection", collectionService != nil); err != nil {
		return err
	}

	c, err := collectionService.Create(commandContext(cmd), domain.Collection{
		Name:        args[0],
		Description: collectionDescription,
		Color:       collectionColor,
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	cmd.Printf("Created collection %d: %s\n", c.ID, c.Name)
	return nil
}

func runCollectionList(cmd *cobra.Command, _ []string) error {
	if err := requireService("collection", collectionService != nil); err != nil {
		return err
	}

	collections, err := collectionService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if len(collections) == 0 {
		cmd.Println("No collections.")
		return nil
	}

	for _, c := range collections {
		cmd.Printf("  [%d] %s\n", c.ID, c.Name)
		if c.Description != "" {
			cmd.Printf("      %s\n", styled(cmd, dimStyle, c.Description))
		}
	}
	return nil
}

func runCollectionShow(cmd *cobra.Command, args []string) error {
	if err := requireService("collection", collectionService != nil); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	c, err := collectionService.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get collection: %w", err)
	}
	docs, err := collectionService.Documents(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list collection documents: %w", err)
	}

	cmd.Println(styled(cmd, headingStyle, c.Name))
	if c.Description != "" {
		cmd.Printf("  %s\n", c.Description)
	}
	cmd.Printf("  Created: %s\n", c.CreatedAt.Format(timeLayout))
	cmd.Println()

	if len(docs) == 0 {
		cmd.Println("  No documents.")
		return nil
	}
	for i := range docs {
		cmd.Printf("  [%d] %s\n", docs[i].ID, docs[i].Path)
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runCollectionUpdate(cmd *cobra.Command, args []string) error {
	if err := requireService("collection", collectionService != nil); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var update domain.CollectionUpdate
	if cmd.Flags().Changed("name") {
		update.Name = &collectionName
	}
	if cmd.Flags().Changed("description") {
		update.Description = &collectionDescription
	}
	if cmd.Flags().Changed("color") {
		update.Color = &collectionColor
	}

	c, err := collectionService.Update(commandContext(cmd), id, update)
	if err != nil {
		return fmt.Errorf("failed to update collection: %w", err)
	}

	cmd.Printf("Updated collection %d: %s\n", c.ID, c.Name)
	return nil
}

func runCollectionRemove(cmd *cobra.Command, args []string) error {
	if err := requireService("collection", collectionService != nil); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := collectionService.Delete(commandContext(cmd), id); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	cmd.Printf("Deleted collection %d\n", id)
	return nil
}

func runCollectionAdd(cmd *cobra.Command, args []string) error {
	if err := requireService("collection", collectionService != nil); err != nil {
		return err
	}
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	if err := collectionService.AddDocuments(commandContext(cmd), ids[0], ids[1:]); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	cmd.Printf("Added %d documents to collection %d\n", len(ids)-1, ids[0])
	return nil
}

func runCollectionRemoveDoc(cmd *cobra.Command, args []string) error {
	if err := requireService("collection", collectionService != nil); err != nil {
		return err
	}
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	if err := collectionService.RemoveDocument(commandContext(cmd), ids[0], ids[1]); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}

	cmd.Printf("Removed document %d from collection %d\n", ids[1], ids[0])
	return nil
}

func runCollectionSearch(cmd *cobra.Command, args []string) error {
	if err := requireService("search", searchService != nil); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	query := strings.Join(args[1:], " ")

	results, err := searchService.SearchInCollection(commandContext(cmd), id, query, collectionLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return outputSearchTable(cmd, results)
}

func runCollectionExport(cmd *cobra.Command, args []string) error {
	if err := requireService("collection", collectionService != nil); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	result, err := collectionService.Export(commandContext(cmd), id, driving.ExportFormat(collectionFormat), args[1])
	if err != nil {
		return fmt.Errorf("failed to export collection: %w", err)
	}

	cmd.Printf("Exported %d documents to %s\n", result.Count, result.Path)
	for _, path := range result.Skipped {
		cmd.Printf("  skipped (missing): %s\n", path)
	}
	return nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:     "document",
	Aliases: []string{"doc"},
	Short:   "Manage library documents",
	Long:    `List, inspect, tag, open, or remove documents in the library.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print document text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentUpdateCmd = &cobra.Command{
	Use:   "update [doc-id]",
	Short: "Set category or tags",
	Long: `Updates document metadata. Only the flags given are changed; pass an
empty value to clear a field.

  deepdocs document update 4 --category finance --tags "2024,budget"`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentUpdate,
}

var documentRemoveCmd = &cobra.Command{
	Use:     "rm [doc-id...]",
	Aliases: []string{"remove"},
	Short:   "Remove documents from the library",
	Long:    `Removes documents with their chunks and collection memberships. Files on disk are not touched.`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDocumentRemove,
}

var documentPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove documents whose file no longer exists",
	Args:  cobra.NoArgs,
	RunE:  runDocumentPrune,
}

var documentOpenCmd = &cobra.Command{
	Use:   "open [doc-id]",
	Short: "Open document in default application",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentOpen,
}

var (
	documentJSON     bool
	documentCategory string
	documentTags     string
)

func init() {
	documentListCmd.Flags().BoolVar(&documentJSON, "json", false, "output as JSON")
	documentUpdateCmd.Flags().StringVar(&documentCategory, "category", "", "document category")
	documentUpdateCmd.Flags().StringVar(&documentTags, "tags", "", "comma-separated tags")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentUpdateCmd)
	documentCmd.AddCommand(documentRemoveCmd)
	documentCmd.AddCommand(documentPruneCmd)
	documentCmd.AddCommand(documentOpenCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if err := requireService("document", documentService != nil); err != nil {
		return err
	}

	docs, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentJSON {
		views := make([]documentView, 0, len(docs))
		for i := range docs {
			views = append(views, newDocumentView(&docs[i]))
		}
		return printJSON(cmd, views)
	}

	if len(docs) == 0 {
		cmd.Println("No documents. Add some with 'deepdocs add <path>'.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  [%d] %s\n", docs[i].ID, docs[i].Name)
		cmd.Printf("      %s\n", styled(cmd, dimStyle, docs[i].Path))
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if err := requireService("document", documentService != nil); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	details, err := documentService.GetDetails(commandContext(cmd), id)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	doc := details.Document

	cmd.Println(styled(cmd, headingStyle, fmt.Sprintf("Document %d", doc.ID)))
	cmd.Println()
	cmd.Printf("  Name:      %s\n", doc.Name)
	cmd.Printf("  Path:      %s\n", doc.Path)
	cmd.Printf("  Size:      %s\n", formatSize(doc.Size))
	cmd.Printf("  Modified:  %s\n", doc.ModifiedAt.Format(timeLayout))
	cmd.Printf("  Added:     %s\n", doc.AddedAt.Format(timeLayout))
	if doc.Category != "" {
		cmd.Printf("  Category:  %s\n", doc.Category)
	}
	if tags := doc.TagList(); len(tags) > 0 {
		cmd.Printf("  Tags:      %s\n", strings.Join(tags, ", "))
	}
	cmd.Printf("  Status:    %s\n", details.Status)
	cmd.Printf("  Chunks:    %d\n", details.ChunkCount)

	if len(details.Collections) > 0 {
		names := make([]string, 0, len(details.Collections))
		for _, c := range details.Collections {
			names = append(names, c.Name)
		}
		cmd.Printf("  In:        %s\n", strings.Join(names, ", "))
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if err := requireService("document", documentService != nil); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	content, err := documentService.GetContent(commandContext(cmd), id)
	if err != nil {
		return fmt.Errorf("failed to get document content: %w", err)
	}

	cmd.Println(content)
	return nil
}

func runDocumentUpdate(cmd *cobra.Command, args []string) error {
	if err := requireService("document", documentService != nil); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var update domain.DocumentMetadataUpdate
	if cmd.Flags().Changed("category") {
		category := strings.TrimSpace(documentCategory)
		update.Category = &category
	}
	if cmd.Flags().Changed("tags") {
		tags := documentTags
		update.Tags = &tags
	}
	if update.IsEmpty() {
		return fmt.Errorf("nothing to update: pass --category or --tags")
	}

	if err := documentService.UpdateMetadata(commandContext(cmd), id, update); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	cmd.Printf("Updated document %d\n", id)
	return nil
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	if err := requireService("document", documentService != nil); err != nil {
		return err
	}
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	if err := documentService.Delete(commandContext(cmd), ids); err != nil {
		return fmt.Errorf("failed to remove documents: %w", err)
	}

	cmd.Printf("Removed %d documents\n", len(ids))
	return nil
}

func runDocumentPrune(cmd *cobra.Command, _ []string) error {
	if err := requireService("document", documentService != nil); err != nil {
		return err
	}

	n, err := documentService.PruneMissing(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to prune documents: %w", err)
	}

	cmd.Printf("Removed %d missing documents\n", n)
	return nil
}

func runDocumentOpen(cmd *cobra.Command, args []string) error {
	if err := requireService("document", documentService != nil); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := documentService.Open(commandContext(cmd), id); err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	return nil
}

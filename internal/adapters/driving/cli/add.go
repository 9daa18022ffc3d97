package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addIndex bool

var addCmd = &cobra.Command{
	Use:   "add [path...]",
	Short: "Add files or directories to the library",
	Long: `Adds files to the library. Directories are walked recursively; hidden
files and directories are skipped. Paths already in the library are left
unchanged.

Use --index to extract and embed the added documents immediately.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().BoolVar(&addIndex, "index", false, "index the added documents")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := requireService("document", documentService != nil); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	docs, err := documentService.Add(ctx, args)
	if err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No new documents added.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  [%d] %s\n", docs[i].ID, docs[i].Path)
	}
	cmd.Printf("Added %d documents\n", len(docs))

	if !addIndex {
		return nil
	}
	if err := requireService("indexing", indexingService != nil); err != nil {
		return err
	}

	total := 0
	for i := range docs {
		n, err := indexingService.EnsureIndexed(ctx, docs[i].ID)
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", docs[i].Path, err)
		}
		total += n
	}
	cmd.Printf("Indexed %d chunks\n", total)
	return nil
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/deepdocs/internal/adapters/driving/watcher"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

var watchNoIndex bool

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Keep the library in sync with directories",
	Long: `Watches directories recursively. New files are added, modified files are
reindexed and removed files are deleted from the library. Runs until
interrupted.

  deepdocs watch ~/Documents/reports`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoIndex, "no-index", false, "track files without indexing them")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireService("document", documentService != nil); err != nil {
		return err
	}

	indexing := indexingService
	if watchNoIndex {
		indexing = nil
	}

	w := watcher.New(documentService, indexing, watcher.WithOnChange(func(c watcher.Change, err error) {
		if err != nil {
			logger.Warn("%s %s: %v", c.Type, c.Path, err)
			cmd.PrintErrf("  %s %s: %v\n", c.Type, c.Path, err)
			return
		}
		cmd.Printf("  %s %s\n", c.Type, c.Path)
	}))

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	return w.Watch(commandContext(cmd), args...)
}

package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

var tuiCollection int64

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse and search the library interactively",
	Long: `Open the terminal interface.

From the menu you can search the library, browse documents and
collections, read extracted text and change settings. Press s on a
collection to search only its members, or start there directly:

  deepdocs tui --collection 3

Press ? inside the interface for all key bindings.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().Int64Var(&tuiCollection, "collection", 0, "open a search restricted to this collection id")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	if err := requireService("search", searchService != nil); err != nil {
		return err
	}

	// Log lines written to stderr would tear the alternate screen.
	if logger.IsVerbose() {
		logger.SetVerbose(false)
		defer logger.SetVerbose(true)
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "deepdocs tui crashed: %v\n%s\n", r, debug.Stack())
			err = fmt.Errorf("tui: %v", r)
		}
	}()

	ctx := commandContext(cmd)
	ports := tui.NewPorts(searchService, documentService, collectionService, indexingService)
	ports.Settings = settingsService

	app, err := tui.NewApp(ports)
	if err != nil {
		return err
	}
	app.WithContext(ctx)

	if tuiCollection != 0 {
		if err := requireService("collection", collectionService != nil); err != nil {
			return err
		}
		c, err := collectionService.Get(ctx, tuiCollection)
		if err != nil {
			return fmt.Errorf("collection %d: %w", tuiCollection, err)
		}
		app.SearchCollection(*c)
	}

	return app.Run()
}

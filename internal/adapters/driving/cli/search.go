package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
	searchIDs   []int64
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Ranks documents by semantic similarity to the query. Each document is
scored by its best matching chunk, so long documents are not penalised.

Only indexed documents are searched; run 'deepdocs index --all' first.

  deepdocs search "tax deductions for home office"
  deepdocs search -n 3 --ids 4,9 "invoice total"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().Int64SliceVar(&searchIDs, "ids", nil, "restrict search to these document ids")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireService("search", searchService != nil); err != nil {
		return err
	}
	query := strings.Join(args, " ")

	opts := domain.SearchOptions{
		TopK:        searchLimit,
		DocumentIDs: searchIDs,
		Scoped:      cmd.Flags().Changed("ids"),
	}

	results, err := searchService.Search(commandContext(cmd), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, newResultViews(results))
	}
	return outputSearchTable(cmd, results)
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i := range results {
		r := &results[i]
		score := styled(cmd, scoreStyle, fmt.Sprintf("%.3f", r.Score))
		cmd.Printf("  [%d] %s (%s)\n", i+1, r.Document.Name, score)
		cmd.Printf("      %s\n", styled(cmd, dimStyle, fmt.Sprintf("#%d %s", r.Document.ID, r.Document.Path)))
		if r.Snippet != "" {
			cmd.Printf("      %s\n", oneLine(r.Snippet))
		}
		cmd.Println()
	}
	return nil
}

// oneLine collapses whitespace runs so snippets fit a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// styled applies style only when writing to a terminal.
func styled(cmd *cobra.Command, style lipgloss.Style, text string) string {
	if !stdoutIsTerminal(cmd) {
		return text
	}
	return style.Render(text)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// documentView is the JSON shape of a document; embeddings are omitted.
type documentView struct {
	ID         int64    `json:"id"`
	Path       string   `json:"path"`
	Name       string   `json:"name"`
	Size       int64    `json:"size"`
	ModifiedAt string   `json:"modified_at"`
	Category   string   `json:"category,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	AddedAt    string   `json:"added_at"`
}

func newDocumentView(d *domain.Document) documentView {
	return documentView{
		ID:         d.ID,
		Path:       d.Path,
		Name:       d.Name,
		Size:       d.Size,
		ModifiedAt: d.ModifiedAt.Format(timeLayout),
		Category:   d.Category,
		Tags:       d.TagList(),
		AddedAt:    d.AddedAt.Format(timeLayout),
	}
}

// resultView is the JSON shape of a search result.
type resultView struct {
	Document   documentView `json:"document"`
	ChunkIndex int          `json:"chunk_index"`
	Score      float64      `json:"score"`
	Snippet    string       `json:"snippet"`
}

func newResultViews(results []domain.SearchResult) []resultView {
	views := make([]resultView, 0, len(results))
	for i := range results {
		views = append(views, resultView{
			Document:   newDocumentView(&results[i].Document),
			ChunkIndex: results[i].Chunk.Index,
			Score:      results[i].Score,
			Snippet:    results[i].Snippet,
		})
	}
	return views
}

const timeLayout = "2006-01-02 15:04:05"

func formatSize(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}

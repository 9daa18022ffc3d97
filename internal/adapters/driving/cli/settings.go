package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change configuration",
	Long: `Settings are stored in ~/.deepdocs/config.toml. Any key can be overridden
with an environment variable, e.g. DEEPDOCS_EMBEDDING_PROVIDER=ollama.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Changes a single setting. The value is validated before it is saved.

  deepdocs settings set embedding.provider ollama
  deepdocs settings set embedding.model nomic-embed-text
  deepdocs settings set chunking.size 800

Run 'deepdocs settings keys' for the full list.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the embedding provider is reachable",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireService("settings", settingsService != nil); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(styled(cmd, headingStyle, "[Embedding]"))
	cmd.Printf("  Provider:     %s\n", settings.Embedding.Provider.Description())
	if settings.Embedding.Provider.IsRemote() {
		cmd.Printf("  Model:        %s\n", settings.Embedding.Model)
		cmd.Printf("  Base URL:     %s\n", settings.Embedding.BaseURL)
		if settings.Embedding.RequestsPerSecond > 0 {
			cmd.Printf("  Rate limit:   %.2f req/s\n", settings.Embedding.RequestsPerSecond)
		}
	}
	cmd.Printf("  Dimensions:   %d\n", settings.Embedding.Dimensions)
	cmd.Println()

	cmd.Println(styled(cmd, headingStyle, "[Chunking]"))
	cmd.Printf("  Size:         %d\n", settings.Chunking.Size)
	cmd.Printf("  Overlap:      %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println(styled(cmd, headingStyle, "[Extraction]"))
	cmd.Printf("  Max chars:    %d\n", settings.Extraction.MaxChars)
	cmd.Printf("  OCR:          %s\n", enabled(settings.Extraction.OCREnabled))
	if settings.Extraction.OCREnabled {
		cmd.Printf("  OCR below:    %d chars\n", settings.Extraction.MinTextChars)
		cmd.Printf("  OCR language: %s\n", settings.Extraction.OCRLanguage)
	}
	cmd.Println()

	cmd.Println(styled(cmd, headingStyle, "[Search]"))
	cmd.Printf("  Top K:        %d\n", settings.Search.TopK)
	cmd.Println()

	cmd.Println(styled(cmd, headingStyle, "[Indexing]"))
	cmd.Printf("  Workers:      %d\n", settings.Indexing.Workers)
	cmd.Println()

	if unknown := settingsService.UnknownKeys(); len(unknown) > 0 {
		cmd.Printf("Ignored keys: %s\n", strings.Join(unknown, ", "))
	}
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireService("settings", settingsService != nil); err != nil {
		return err
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if err := requireService("settings", settingsService != nil); err != nil {
		return err
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if err := requireService("settings", settingsService != nil); err != nil {
		return err
	}

	if err := settingsService.ValidateEmbeddingConfig(commandContext(cmd)); err != nil {
		return fmt.Errorf("embedding provider check failed: %w", err)
	}

	cmd.Println("Embedding provider is reachable.")
	return nil
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Back up or restore the library database",
}

var dbExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a backup of the library database",
	Long:  `Writes a consistent copy of documents.db to file. The file must not exist.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDBExport,
}

var dbImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the library database with a backup",
	Long: `Replaces documents.db with a backup written by 'deepdocs db export'.
The current library is discarded.`,
	Args: cobra.ExactArgs(1),
	RunE: runDBImport,
}

func init() {
	dbCmd.AddCommand(dbExportCmd)
	dbCmd.AddCommand(dbImportCmd)
	rootCmd.AddCommand(dbCmd)
}

var errNoDatabase = errors.New("database commands are not available with --ephemeral")

func runDBExport(cmd *cobra.Command, args []string) error {
	if database == nil {
		return errNoDatabase
	}

	if err := database.Backup(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}

	cmd.Printf("Database exported to %s\n", args[0])
	return nil
}

func runDBImport(cmd *cobra.Command, args []string) error {
	if database == nil {
		return errNoDatabase
	}

	if err := database.Restore(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}

	cmd.Printf("Database restored from %s\n", args[0])
	return nil
}

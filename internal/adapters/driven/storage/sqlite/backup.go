package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// Backup writes a consistent copy of the database to dest.
// dest must not already exist.
func (s *Store) Backup(ctx context.Context, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%w: %s already exists", domain.ErrInvalidInput, dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Restore replaces the database in dataDir with the backup at src.
// The store for dataDir must be closed. src is checked before anything
// is overwritten.
func Restore(ctx context.Context, src, dataDir string) error {
	if err := checkBackup(ctx, src); err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	target := filepath.Join(dataDir, DatabaseFile)
	tmp := target + ".restore"
	if err := copyFile(src, tmp); err != nil {
		return err
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(target + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			os.Remove(tmp)
			return fmt.Errorf("removing %s: %w", suffix, err)
		}
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing database: %w", err)
	}
	return nil
}

// checkBackup verifies that src is a database with a documents table.
func checkBackup(ctx context.Context, src string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("%w: backup %s: %w", domain.ErrInvalidInput, src, err)
	}

	db, err := sql.Open("sqlite", "file:"+src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("opening backup: %w", err)
	}
	defer db.Close()

	var n int
	row := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('documents', 'chunks')`)
	if err := row.Scan(&n); err != nil {
		return fmt.Errorf("%w: %s is not a database: %w", domain.ErrInvalidInput, src, err)
	}
	if n != 2 {
		return fmt.Errorf("%w: %s is not a document library backup", domain.ErrInvalidInput, src)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

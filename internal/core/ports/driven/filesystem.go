package driven

import (
	"context"
	"iter"
	"time"
)

// FileInfo describes a file on disk as seen at the time of the call.
type FileInfo struct {
	Path       string
	Name       string
	Size       int64
	ModifiedAt time.Time
	IsDir      bool

	// Fingerprint identifies the file state. It changes whenever the
	// path, size or modification time changes.
	Fingerprint string
}

// FileScanner inspects the local file system.
type FileScanner interface {
	// Stat returns information about path. Missing files return an
	// error satisfying errors.Is(err, fs.ErrNotExist).
	Stat(ctx context.Context, path string) (FileInfo, error)

	// Files lazily yields the regular files under root, skipping hidden
	// entries. The sequence is single-pass: iterating it a second time
	// yields domain.ErrSequenceConsumed.
	Files(ctx context.Context, root string) iter.Seq2[string, error]
}

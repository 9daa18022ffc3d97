// Package scanner walks the local file system for documents.
package scanner

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/minio/highwayhash"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

// Ensure Scanner implements the interface.
var _ driven.FileScanner = (*Scanner)(nil)

// fingerprintKey keys the file state hash. Changing it invalidates every
// stored fingerprint.
var fingerprintKey = []byte("deepdocs-file-fingerprint-v1-key")

// Scanner reads file metadata from the operating system.
type Scanner struct {
	includeHidden bool
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithHidden makes Files descend into hidden files and directories.
func WithHidden() Option {
	return func(s *Scanner) {
		s.includeHidden = true
	}
}

// New creates a file system scanner.
func New(opts ...Option) *Scanner {
	s := &Scanner{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stat returns the current state of path.
func (s *Scanner) Stat(ctx context.Context, path string) (driven.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return driven.FileInfo{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return driven.FileInfo{}, fmt.Errorf("stat %s: %w", path, err)
	}

	return driven.FileInfo{
		Path:        path,
		Name:        info.Name(),
		Size:        info.Size(),
		ModifiedAt:  info.ModTime(),
		IsDir:       info.IsDir(),
		Fingerprint: Fingerprint(path, info.Size(), info.ModTime().UnixNano()),
	}, nil
}

// Files returns a single-pass sequence of the regular files under root in
// lexical order. Walk errors are yielded and the walk continues. A second
// iteration yields domain.ErrSequenceConsumed.
func (s *Scanner) Files(ctx context.Context, root string) iter.Seq2[string, error] {
	var consumed atomic.Bool

	return func(yield func(string, error) bool) {
		if consumed.Swap(true) {
			yield("", domain.ErrSequenceConsumed)
			return
		}

		stopped := false
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				if path == root {
					return err
				}
				logger.Warn("Skipping %s: %v", path, err)
				if !yield("", fmt.Errorf("walk %s: %w", path, err)) {
					stopped = true
					return fs.SkipAll
				}
				return nil
			}

			if path != root && !s.includeHidden && isHidden(d.Name()) {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			if !yield(path, nil) {
				stopped = true
				return fs.SkipAll
			}
			return nil
		})

		if err != nil && !stopped && !errors.Is(err, fs.SkipAll) {
			yield("", fmt.Errorf("walk %s: %w", root, err))
		}
	}
}

// Fingerprint hashes the identifying state of a file.
func Fingerprint(path string, size, modifiedUnixNano int64) string {
	buf := make([]byte, 0, len(path)+16)
	buf = append(buf, path...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(size))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(modifiedUnixNano))
	return strconv.FormatUint(highwayhash.Sum64(buf, fingerprintKey), 16)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

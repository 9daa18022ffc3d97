package services

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/minio/highwayhash"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

// exportHashKey keys the short hash that disambiguates clashing file names.
var exportHashKey = make([]byte, 32)

// Export writes the member documents of a collection to dest.
func (s *CollectionService) Export(
	ctx context.Context, collectionID int64, format driving.ExportFormat, dest string,
) (*driving.ExportResult, error) {
	if !format.IsValid() {
		return nil, fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidInput, format)
	}
	if dest == "" {
		return nil, fmt.Errorf("%w: export destination is required", domain.ErrInvalidInput)
	}
	if _, err := s.Get(ctx, collectionID); err != nil {
		return nil, err
	}

	docs, err := s.Documents(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	result := &driving.ExportResult{Path: dest}
	if format == driving.ExportCSV {
		return result, writeCSV(dest, docs, result)
	}

	present := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		if _, err := s.scanner.Stat(ctx, doc.Path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("stat %s: %w", doc.Path, err)
			}
			result.Skipped = append(result.Skipped, doc.Path)
			continue
		}
		present = append(present, doc)
	}

	switch format {
	case driving.ExportFolder:
		err = copyToFolder(dest, present, result)
	case driving.ExportZip:
		err = writeZip(dest, present, result)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Exported %d documents of collection %d to %s", result.Count, collectionID, dest)
	return result, nil
}

func copyToFolder(dest string, docs []domain.Document, result *driving.ExportResult) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("create export folder: %w", err)
	}

	for _, doc := range docs {
		base := safeFilename(exportName(doc))
		target := filepath.Join(dest, base)
		if _, err := os.Stat(target); err == nil {
			ext := filepath.Ext(base)
			target = filepath.Join(dest, strings.TrimSuffix(base, ext)+"-"+shortHash(doc.Path)+ext)
		}
		if err := copyFile(doc.Path, target); err != nil {
			return err
		}
		result.Count++
	}
	return nil
}

func writeZip(dest string, docs []domain.Document, result *driving.ExportResult) (err error) {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close archive: %w", cerr)
		}
	}()

	zw := zip.NewWriter(f)
	used := make(map[string]bool, len(docs))
	for _, doc := range docs {
		name := safeFilename(exportName(doc))
		if used[name] {
			ext := filepath.Ext(name)
			name = strings.TrimSuffix(name, ext) + "-" + shortHash(doc.Path) + ext
		}
		used[name] = true

		if err := addToZip(zw, name, doc.Path); err != nil {
			return err
		}
		result.Count++
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return nil
}

func addToZip(zw *zip.Writer, name, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("add %s to archive: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("write %s to archive: %w", name, err)
	}
	return nil
}

func writeCSV(dest string, docs []domain.Document, result *driving.ExportResult) (err error) {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close csv: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "name", "path"}); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, doc := range docs {
		if err := w.Write([]string{strconv.FormatInt(doc.ID, 10), doc.Name, doc.Path}); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		result.Count++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}

func exportName(doc domain.Document) string {
	if doc.Name != "" {
		return doc.Name
	}
	return filepath.Base(doc.Path)
}

// safeFilename replaces characters that are not allowed in file names.
func safeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\?%*:|"<>`, r) {
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "file"
	}
	return name
}

// shortHash returns six hex characters derived from path.
func shortHash(path string) string {
	sum := highwayhash.Sum64([]byte(path), exportHashKey)
	return fmt.Sprintf("%016x", sum)[:6]
}

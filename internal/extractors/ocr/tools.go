package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

// Ensure the tools implement the interfaces.
var (
	_ driven.PageRasterizer = (*Rasterizer)(nil)
	_ driven.TextRecognizer = (*Recognizer)(nil)
)

// pagePrefix names the images pdftoppm writes, e.g. page-01.png.
const pagePrefix = "page"

// Rasterizer renders PDF pages to PNG files with pdftoppm.
type Rasterizer struct {
	runner     CommandRunner
	resolution int
}

// NewRasterizer creates a rasterizer. runner may be nil to use the real binary.
func NewRasterizer(runner CommandRunner) *Rasterizer {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Rasterizer{runner: runner, resolution: 200}
}

// Rasterize writes one PNG per page into dir and returns them in page order.
func (r *Rasterizer) Rasterize(ctx context.Context, path, dir string) ([]string, error) {
	_, err := r.runner.Run(ctx, RasterizerTool,
		"-png", "-r", strconv.Itoa(r.resolution),
		path, filepath.Join(dir, pagePrefix))
	if err != nil {
		return nil, fmt.Errorf("rasterize %s: %w", path, err)
	}
	return pageImages(dir)
}

// pageImages lists the page images in dir ordered by page number.
// pdftoppm zero-pads the number to the width of the page count.
func pageImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list page images: %w", err)
	}

	type page struct {
		num  int
		path string
	}
	var pages []page
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".png") || !strings.HasPrefix(name, pagePrefix+"-") {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, pagePrefix+"-"), ".png"))
		if err != nil {
			continue
		}
		pages = append(pages, page{num: num, path: filepath.Join(dir, name)})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	paths := make([]string, len(pages))
	for i, p := range pages {
		paths[i] = p.path
	}
	return paths, nil
}

// Recognizer reads text from images with tesseract.
type Recognizer struct {
	runner   CommandRunner
	language string
}

// NewRecognizer creates a recognizer for language (e.g. "eng").
func NewRecognizer(runner CommandRunner, language string) *Recognizer {
	if runner == nil {
		runner = ExecRunner{}
	}
	if language == "" {
		language = "eng"
	}
	return &Recognizer{runner: runner, language: language}
}

// Recognize returns the text tesseract finds in the image.
func (r *Recognizer) Recognize(ctx context.Context, imagePath string) (string, error) {
	out, err := r.runner.Run(ctx, RecognizerTool, imagePath, "stdout", "-l", r.language)
	if err != nil {
		return "", fmt.Errorf("recognize %s: %w", filepath.Base(imagePath), err)
	}
	return string(out), nil
}

// Package ocr recognises text in scanned PDFs by rendering each page to
// an image with pdftoppm and running tesseract over the images.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/custodia-labs/deepdocs/internal/core/domain"
)

// Tool binaries.
const (
	RasterizerTool = "pdftoppm"
	RecognizerTool = "tesseract"
)

// CommandRunner executes external commands. It allows tests to replace
// the real binaries.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes the command and returns its standard output.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOCRToolNotFound, name)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	return out, nil
}

// CheckAvailable reports whether both OCR tools are installed.
func CheckAvailable() error {
	var errs []error
	for _, tool := range []string{RasterizerTool, RecognizerTool} {
		if _, err := exec.LookPath(tool); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s", domain.ErrOCRToolNotFound, tool))
		}
	}
	return errors.Join(errs...)
}

// InstallInstructions returns platform install hints for the OCR tools.
func InstallInstructions() string {
	return `OCR for scanned PDFs requires pdftoppm (poppler) and tesseract.

  macOS:          brew install poppler tesseract
  Debian/Ubuntu:  apt install poppler-utils tesseract-ocr
  Fedora:         dnf install poppler-utils tesseract
  Windows:        choco install poppler tesseract`
}

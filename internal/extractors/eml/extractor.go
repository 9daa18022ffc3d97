// Package eml extracts headers and body text from saved email messages.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"strings"

	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
	"github.com/custodia-labs/deepdocs/internal/extractors/html"
)

// Ensure Extractor implements the interface.
var _ driven.FormatExtractor = (*Extractor)(nil)

// maxMessageBytes bounds how much of a message is parsed; attachments
// beyond it are dropped.
const maxMessageBytes = 32 << 20

// Extractor handles RFC 5322 message files.
type Extractor struct{}

// New creates a new email extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".eml"}
}

// ExtractText returns the From, To, Date and Subject headers followed by
// the message body. Plain text parts are preferred over HTML parts.
func (e *Extractor) ExtractText(_ context.Context, path string, _ int) (driven.ExtractedText, error) {
	f, err := os.Open(path)
	if err != nil {
		return driven.ExtractedText{}, err
	}
	defer f.Close()

	msg, err := mail.ReadMessage(io.LimitReader(f, maxMessageBytes))
	if err != nil {
		return driven.ExtractedText{}, fmt.Errorf("parse message %s: %w", path, err)
	}

	var content strings.Builder
	for _, name := range []string{"From", "To", "Date", "Subject"} {
		if v := decodeHeader(msg.Header.Get(name)); v != "" {
			fmt.Fprintf(&content, "%s: %s\n", name, v)
		}
	}

	body, err := extractBody(msg.Header, msg.Body)
	if err != nil {
		return driven.ExtractedText{}, fmt.Errorf("read body of %s: %w", path, err)
	}
	if body != "" {
		content.WriteString("\n")
		content.WriteString(body)
	}

	return driven.ExtractedText{Text: strings.ToValidUTF8(strings.TrimSpace(content.String()), "�")}, nil
}

// decodeHeader decodes RFC 2047 encoded words, returning the raw value
// when decoding fails.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// partHeader is the subset of header access shared by mail.Header and
// textproto.MIMEHeader.
type partHeader interface {
	Get(key string) string
}

func extractBody(h partHeader, r io.Reader) (string, error) {
	contentType := h.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	data, err := io.ReadAll(decodeTransfer(h.Get("Content-Transfer-Encoding"), r))
	if err != nil {
		return "", err
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.TrimSpace(string(data)), nil
	}

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		return extractMultipart(bytes.NewReader(data), params["boundary"])
	case mediaType == "text/html":
		return html.StripTags(string(data)), nil
	case strings.HasPrefix(mediaType, "text/"):
		return strings.TrimSpace(string(data)), nil
	default:
		return "", nil
	}
}

func extractMultipart(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", nil
	}

	mr := multipart.NewReader(r, boundary)
	var textParts, htmlParts []string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Truncated or malformed trailer: keep what was read.
			break
		}

		if isAttachment(part.Header.Get("Content-Disposition")) {
			part.Close()
			continue
		}

		mediaType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		text, err := extractBody(part.Header, part)
		part.Close()
		if err != nil || text == "" {
			continue
		}

		if mediaType == "text/html" {
			htmlParts = append(htmlParts, text)
		} else {
			textParts = append(textParts, text)
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n"), nil
	}
	return strings.Join(htmlParts, "\n"), nil
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

func isAttachment(disposition string) bool {
	d, _, err := mime.ParseMediaType(disposition)
	return err == nil && d == "attachment"
}

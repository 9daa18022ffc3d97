// Package html extracts readable text from HTML pages.
package html

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/deepdocs/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.FormatExtractor = (*Extractor)(nil)

// markupFactor bounds how much markup is read per wanted character.
const markupFactor = 8

// Extractor handles saved web pages.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// ExtractText strips markup from the page. The title, when present, is
// the first line.
func (e *Extractor) ExtractText(_ context.Context, path string, maxChars int) (driven.ExtractedText, error) {
	f, err := os.Open(path)
	if err != nil {
		return driven.ExtractedText{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if maxChars > 0 {
		r = io.LimitReader(f, int64(maxChars)*utf8.UTFMax*markupFactor)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return driven.ExtractedText{}, fmt.Errorf("read %s: %w", path, err)
	}

	page := strings.ToValidUTF8(string(data), "�")
	text := StripTags(page)
	if title := Title(page); title != "" && !strings.HasPrefix(text, title) {
		text = title + "\n" + text
	}
	return driven.ExtractedText{Text: text}, nil
}

var (
	titleTag         = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptTag        = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag         = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag      = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag          = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag           = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	comments         = regexp.MustCompile(`(?s)<!--.*?-->`)
	closeBlockTags   = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	openBlockTags    = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	breakTags        = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	anyTag           = regexp.MustCompile(`<[^>]+>`)
	horizontalSpaces = regexp.MustCompile(`[ \t]+`)
	repeatedNewlines = regexp.MustCompile(`\n{3,}`)
)

// Title returns the unescaped contents of the <title> element, or "".
func Title(page string) string {
	m := titleTag.FindStringSubmatch(page)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(m[1]))
}

// StripTags removes markup and returns the visible text, one block per line.
func StripTags(page string) string {
	for _, re := range []*regexp.Regexp{scriptTag, styleTag, noscriptTag, headTag, svgTag, comments} {
		page = re.ReplaceAllString(page, "")
	}

	page = openBlockTags.ReplaceAllString(page, "\n")
	page = closeBlockTags.ReplaceAllString(page, "\n")
	page = breakTags.ReplaceAllString(page, "\n")
	page = anyTag.ReplaceAllString(page, "")
	page = html.UnescapeString(page)
	page = horizontalSpaces.ReplaceAllString(page, " ")
	page = repeatedNewlines.ReplaceAllString(page, "\n\n")

	lines := strings.Split(page, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

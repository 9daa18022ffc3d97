package html

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html>
<head><title>Lease &amp; Deposit</title><style>p { color: red; }</style></head>
<body>
  <!-- navigation -->
  <script>track();</script>
  <h1>Apartment lease</h1>
  <p>Monthly rent is   <b>1,200</b> EUR.</p>
  <ul><li>Deposit: two months</li><li>Notice: three months</li></ul>
  Signed<br/>by both parties
</body>
</html>`

func TestExtractor_Extensions(t *testing.T) {
	assert.ElementsMatch(t, []string{".html", ".htm", ".xhtml"}, New().Extensions())
}

func TestStripTags(t *testing.T) {
	want := "Apartment lease\n" +
		"Monthly rent is 1,200 EUR.\n" +
		"Deposit: two months\n" +
		"Notice: three months\n" +
		"Signed\n" +
		"by both parties"

	assert.Equal(t, want, StripTags(page))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Lease & Deposit", Title(page))
	assert.Empty(t, Title("<p>no title</p>"))
}

func TestExtractor_ExtractText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lease.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0o644))

	out, err := New().ExtractText(context.Background(), path, 0)

	require.NoError(t, err)
	assert.True(t, len(out.Text) > 0)
	assert.Equal(t, "Lease & Deposit", out.Text[:len("Lease & Deposit")])
	assert.Contains(t, out.Text, "Monthly rent is 1,200 EUR.")
	assert.NotContains(t, out.Text, "track()")
	assert.NotContains(t, out.Text, "color: red")
	assert.False(t, out.OCR)
}

func TestExtractor_MissingFile(t *testing.T) {
	_, err := New().ExtractText(context.Background(), filepath.Join(t.TempDir(), "gone.html"), 0)

	assert.ErrorIs(t, err, os.ErrNotExist)
}

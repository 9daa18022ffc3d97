package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme_ColorsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	colours := []lipgloss.Color{
		theme.Primary,
		theme.Secondary,
		theme.Success,
		theme.Warning,
		theme.Error,
	}

	seen := make(map[string]bool)
	for _, c := range colours {
		assert.NotEmpty(t, string(c))
		assert.False(t, seen[string(c)], "duplicate colour: %s", c)
		seen[string(c)] = true
	}
}

func TestNewStyles(t *testing.T) {
	theme := DefaultTheme()

	s := NewStyles(theme)

	require.NotNil(t, s)
	assert.Equal(t, theme, s.Theme())
	assert.NotNil(t, NewStyles(nil).Theme())
	assert.NotNil(t, DefaultStyles().Theme())
}

func TestStyles_RenderText(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Title.Render("deepdocs"), "deepdocs")
	assert.Contains(t, s.Error.Render("failed"), "failed")
	assert.Contains(t, s.Label.Render("Path:"), "Path:")
}

func TestStyles_Swatch(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Swatch("#ff0000"), "●")
	assert.Contains(t, s.Swatch("#f00"), "●")
	assert.Contains(t, s.Swatch(""), "●")
	assert.Contains(t, s.Swatch("red"), "●")
	assert.True(t, hexColor.MatchString("#A1b2C3"))
	assert.False(t, hexColor.MatchString("#12345"))
	assert.False(t, hexColor.MatchString("red"))
}

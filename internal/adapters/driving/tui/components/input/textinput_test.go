package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/styles"
)

func TestNewSearchInput(t *testing.T) {
	f := NewSearchInput(styles.DefaultStyles())

	require.NotNil(t, f)
	assert.True(t, f.Focused())
	assert.Empty(t, f.Value())
	assert.Equal(t, defaultWidth, f.Width())
}

func TestNewField_NilStyles(t *testing.T) {
	f := NewField(nil, "Value: ", "")

	require.NotNil(t, f)
	assert.NotNil(t, f.styles)
}

func TestField_Typing(t *testing.T) {
	f := NewField(nil, "Value: ", "")

	for _, r := range "budget" {
		f, _ = f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "budget", f.Value())
}

func TestField_SetValueAndReset(t *testing.T) {
	f := NewField(nil, "Value: ", "")

	f.SetValue("800")
	assert.Equal(t, "800", f.Value())

	f.Reset()
	assert.Empty(t, f.Value())
}

func TestField_FocusBlur(t *testing.T) {
	f := NewField(nil, "Value: ", "")

	f.Blur()
	assert.False(t, f.Focused())

	f.Focus()
	assert.True(t, f.Focused())
}

func TestField_SetWidth(t *testing.T) {
	f := NewField(nil, "Search: ", "")

	f.SetWidth(100)
	assert.Equal(t, 100, f.Width())
	assert.Equal(t, 100-len("Search: ")-4, f.textinput.Width)

	f.SetWidth(5)
	assert.Equal(t, minWidth, f.textinput.Width)
}

func TestField_View(t *testing.T) {
	f := NewField(nil, "Search: ", "")
	f.SetValue("tax")

	view := f.View()

	assert.Contains(t, view, "Search:")
	assert.Contains(t, view, "tax")
}

func TestField_Init(t *testing.T) {
	assert.NotNil(t, NewSearchInput(nil).Init())
}

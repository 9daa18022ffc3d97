package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/messages"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewView(t *testing.T) {
	v := NewView(nil)

	require.NotNil(t, v)
	assert.Equal(t, 0, v.Selected())
	assert.Len(t, v.Items(), 6)
	assert.Nil(t, v.Init())
	assert.Equal(t, "Initialising...", v.View())
}

func TestView_Navigation(t *testing.T) {
	v := NewView(nil)

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.Selected())

	v, _ = v.Update(runeKey('j'))
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, v.Selected())

	for range 10 {
		v, _ = v.Update(runeKey('j'))
	}
	assert.Equal(t, len(v.Items())-1, v.Selected())

	v, _ = v.Update(runeKey('k'))
	assert.Equal(t, len(v.Items())-2, v.Selected())
}

func TestView_SelectChangesView(t *testing.T) {
	tests := []struct {
		downs int
		want  messages.ViewType
	}{
		{0, messages.ViewSearch},
		{1, messages.ViewDocuments},
		{2, messages.ViewCollections},
		{3, messages.ViewSettings},
		{4, messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			v := NewView(nil)
			for range tt.downs {
				v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
			}

			_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

			require.NotNil(t, cmd)
			assert.Equal(t, messages.ViewChanged{View: tt.want}, cmd())
		})
	}
}

func TestView_Quit(t *testing.T) {
	v := NewView(nil)
	_, cmd := v.Update(runeKey('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	v = NewView(nil)
	for range len(v.Items()) {
		v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_DigitJumps(t *testing.T) {
	v := NewView(nil)

	v, cmd := v.Update(runeKey('3'))

	assert.Equal(t, 2, v.Selected())
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewCollections}, cmd())

	_, cmd = v.Update(runeKey('9'))
	assert.Nil(t, cmd)

	_, cmd = v.Update(runeKey('6'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_Render(t *testing.T) {
	v := NewView(nil)
	v, _ = v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := v.View()

	assert.Contains(t, view, "deepdocs")
	assert.Contains(t, view, "1 Search")
	assert.Contains(t, view, "Collections")
	assert.Contains(t, view, "Browse the library")
	assert.Contains(t, view, "[q] quit")
}

// Package settings provides the settings view for the TUI.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/deepdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/deepdocs/internal/core/domain"
	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
)

var errNoSettingsService = errors.New("settings service not available")

// View lists every setting with its effective value and edits one at a time.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	settingsService driving.SettingsService
	ctx             context.Context

	settings *domain.AppSettings
	keys     []string
	selected int
	editor   *input.Field
	editing  bool
	notice   string
	checking bool
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	v := &View{
		styles:          s,
		keymap:          keymap.DefaultKeyMap(),
		settingsService: settingsService,
		ctx:             context.Background(),
	}
	if settingsService != nil {
		v.keys = settingsService.Keys()
	}
	return v
}

// WithContext sets the context for the embedding check.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the current settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// Reset leaves edit mode and clears notices.
func (v *View) Reset() {
	v.editing = false
	v.editor = nil
	v.notice = ""
	v.checking = false
	v.err = nil
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: errNoSettingsService}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

func (v *View) saveSetting(k, value string) tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingSaved{Key: k, Err: errNoSettingsService}
		}
		return messages.SettingSaved{Key: k, Err: v.settingsService.Set(k, value)}
	}
}

func (v *View) checkEmbedding() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.EmbeddingChecked{Err: errNoSettingsService}
		}
		return messages.EmbeddingChecked{Err: v.settingsService.ValidateEmbeddingConfig(v.ctx)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.settings = msg.Settings
		}
		return v, nil

	case messages.SettingSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.notice = "Saved " + msg.Key
		return v, v.loadSettings()

	case messages.EmbeddingChecked:
		v.checking = false
		if msg.Err != nil {
			v.err = msg.Err
			v.notice = ""
		} else {
			v.err = nil
			v.notice = "Embedding provider reachable"
		}
		return v, nil

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleKeyMsg(msg)
	}

	if v.editing && v.editor != nil {
		var cmd tea.Cmd
		v.editor, cmd = v.editor.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case key.Matches(msg, v.keymap.Down):
		if v.selected < len(v.keys)-1 {
			v.selected++
		}
	case key.Matches(msg, v.keymap.Select):
		if v.settings == nil || len(v.keys) == 0 {
			return v, nil
		}
		k := v.keys[v.selected]
		v.editor = input.NewField(v.styles, k+": ", "")
		v.editor.SetValue(settingValue(v.settings, k))
		if v.width > 0 {
			v.editor.SetWidth(v.width)
		}
		v.editing = true
		v.notice = ""
		return v, v.editor.Init()
	case key.Matches(msg, v.keymap.Check):
		v.checking = true
		v.notice = "Checking embedding provider..."
		return v, v.checkEmbedding()
	case key.Matches(msg, v.keymap.Reload):
		return v, v.loadSettings()
	case key.Matches(msg, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.editing = false
		v.editor = nil
		return v, nil
	case tea.KeyEnter:
		k := v.keys[v.selected]
		value := strings.TrimSpace(v.editor.Value())
		v.editing = false
		v.editor = nil
		return v, v.saveSetting(k, value)
	}

	var cmd tea.Cmd
	v.editor, cmd = v.editor.Update(msg)
	return v, cmd
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.settings == nil {
		if v.err != nil {
			b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		} else {
			b.WriteString(v.styles.Muted.Render("Loading settings..."))
		}
		return b.String()
	}

	for i, k := range v.keys {
		value := settingValue(v.settings, k)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(fmt.Sprintf("> %-34s %s", k, value)))
		} else {
			b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  %-34s ", k)))
			b.WriteString(v.styles.Muted.Render(value))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if v.editing && v.editor != nil {
		b.WriteString(v.editor.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Help.Render("[enter] save  [esc] cancel"))
		return b.String()
	}

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.notice != "":
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[enter] edit  [c] check embedding  [r] reload  [esc] back"))
	return b.String()
}

// settingValue formats the current value of a dotted key.
func settingValue(s *domain.AppSettings, k string) string {
	switch k {
	case "embedding.provider":
		return string(s.Embedding.Provider)
	case "embedding.model":
		return s.Embedding.Model
	case "embedding.base_url":
		return s.Embedding.BaseURL
	case "embedding.dimensions":
		return strconv.Itoa(s.Embedding.Dimensions)
	case "embedding.requests_per_second":
		return strconv.FormatFloat(s.Embedding.RequestsPerSecond, 'g', -1, 64)
	case "chunking.size":
		return strconv.Itoa(s.Chunking.Size)
	case "chunking.overlap":
		return strconv.Itoa(s.Chunking.Overlap)
	case "extraction.max_chars":
		return strconv.Itoa(s.Extraction.MaxChars)
	case "extraction.min_text_chars":
		return strconv.Itoa(s.Extraction.MinTextChars)
	case "extraction.ocr_enabled":
		return strconv.FormatBool(s.Extraction.OCREnabled)
	case "extraction.ocr_language":
		return s.Extraction.OCRLanguage
	case "search.top_k":
		return strconv.Itoa(s.Search.TopK)
	case "indexing.workers":
		return strconv.Itoa(s.Indexing.Workers)
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	if v.editor != nil {
		v.editor.SetWidth(width)
	}
}

// Settings returns the loaded settings.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// SelectedKey returns the key under the cursor.
func (v *View) SelectedKey() string {
	if v.selected < len(v.keys) {
		return v.keys[v.selected]
	}
	return ""
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Notice returns the last status notice.
func (v *View) Notice() string {
	return v.notice
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

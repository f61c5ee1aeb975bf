// Package tui provides the BubbleTea-based sound picker.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/chime/internal/model"
	"github.com/jmylchreest/chime/internal/preview"
)

// callTimeout bounds each list or preview request.
const callTimeout = 30 * time.Second

// Lister lists the available sounds.
type Lister interface {
	ListAvailableSounds(ctx context.Context) ([]model.SoundEntry, error)
}

// Previewer starts and stops previews.
type Previewer interface {
	StartPreview(ctx context.Context, locator string) error
	StopPreview(ctx context.Context) error
}

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeHelp
)

// Model is the main TUI model.
type Model struct {
	lister    Lister
	previewer Previewer

	// Current mode
	mode Mode

	// Components
	list list.Model
	help help.Model

	// State
	sounds   []model.SoundEntry
	selected *model.SoundEntry
	status   preview.Status
	width    int
	height   int
	ready    bool

	// Key bindings
	keys KeyMap

	// Status message
	statusMsg string
	statusErr bool

	// Controller transitions
	states  <-chan preview.Status
	playing *string
}

// soundItem wraps a sound entry for the list component.
type soundItem struct {
	sound model.SoundEntry
	index int
}

func (i soundItem) Title() string {
	return i.sound.DisplayName
}

func (i soundItem) Description() string {
	return fmt.Sprintf("%d · %s · %s", i.index, i.sound.Origin(), i.sound.ID)
}

func (i soundItem) FilterValue() string {
	return i.sound.DisplayName + " " + i.sound.ID
}

// soundDelegate renders the currently playing sound highlighted.
type soundDelegate struct {
	list.DefaultDelegate
	playing *string
}

func newSoundDelegate(playing *string) soundDelegate {
	return soundDelegate{DefaultDelegate: list.NewDefaultDelegate(), playing: playing}
}

// Render renders a list item, marking the playing sound.
func (d soundDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	si, ok := item.(soundItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	isSelected := index == m.Index()
	isPlaying := d.playing != nil && *d.playing != "" && *d.playing == si.sound.SourceLocator

	itemWidth := m.Width() - d.DefaultDelegate.Styles.NormalTitle.GetHorizontalPadding()

	var titleStyle, descStyle lipgloss.Style
	if isSelected {
		titleStyle = d.DefaultDelegate.Styles.SelectedTitle
		descStyle = d.DefaultDelegate.Styles.SelectedDesc
	} else {
		titleStyle = d.DefaultDelegate.Styles.NormalTitle
		descStyle = d.DefaultDelegate.Styles.NormalDesc
	}
	if isPlaying {
		titleStyle = titleStyle.Foreground(lipgloss.Color("10"))
	}

	title := si.Title()
	if isPlaying {
		title = "▶ " + title
	}
	title = truncate(title, itemWidth)
	desc := truncate(si.Description(), itemWidth)

	fmt.Fprint(w, titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(desc))
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// New creates a new TUI model. states, if non-nil, delivers controller transitions.
func New(lister Lister, previewer Previewer, states <-chan preview.Status) Model {
	playing := new(string)

	l := list.New(nil, newSoundDelegate(playing), 0, 0)
	l.Title = "Notification Sounds"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	m := Model{
		lister:    lister,
		previewer: previewer,
		mode:      ModeList,
		list:      l,
		help:      help.New(),
		keys:      DefaultKeyMap(),
		states:    states,
		playing:   playing,
	}
	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadSounds,
		m.watchState,
	)
}

type soundsLoadedMsg struct {
	sounds []model.SoundEntry
	err    error
}

type stateMsg struct {
	status preview.Status
}

type previewResultMsg struct {
	name string
	err  error
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// loadSounds fetches the catalog.
func (m Model) loadSounds() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	sounds, err := m.lister.ListAvailableSounds(ctx)
	return soundsLoadedMsg{sounds: sounds, err: err}
}

// watchState waits for the next controller transition.
func (m Model) watchState() tea.Msg {
	if m.states == nil {
		return nil
	}
	st, ok := <-m.states
	if !ok {
		return nil
	}
	return stateMsg{status: st}
}

func (m Model) startPreview(s model.SoundEntry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		return previewResultMsg{name: s.DisplayName, err: m.previewer.StartPreview(ctx, s.SourceLocator)}
	}
}

func (m Model) stopPreview() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := m.previewer.StopPreview(ctx); err != nil {
		return statusMsg{text: "Stop failed: " + err.Error(), isErr: true}
	}
	return statusMsg{text: "Stopped"}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list.SetSize(msg.Width, msg.Height-3)
		m.help.Width = msg.Width
		return m, nil

	case soundsLoadedMsg:
		if msg.err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: "Failed to list sounds: " + msg.err.Error(), isErr: true}
			}
		}
		m.sounds = msg.sounds
		return m, m.list.SetItems(m.buildListItems())

	case stateMsg:
		m.status = msg.status
		*m.playing = ""
		if msg.status.State == preview.Playing {
			*m.playing = msg.status.Source
		}
		return m, m.watchState

	case previewResultMsg:
		if msg.err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Preview of %s failed: %v", msg.name, msg.err), isErr: true}
			}
		}
		return m, func() tea.Msg {
			return statusMsg{text: "Playing " + msg.name}
		}

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	if m.mode == ModeList {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While typing a filter every key belongs to the list.
	if m.mode == ModeList && m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeList
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	case key.Matches(msg, m.keys.Stop):
		return m, m.stopPreview
	}

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.mode = ModeList
			m.selected = nil
		case key.Matches(msg, m.keys.Play):
			if m.selected != nil {
				return m, m.startPreview(*m.selected)
			}
		}
		return m, nil
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
		return m, nil
	}

	return m, nil
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Play):
		if item, ok := m.list.SelectedItem().(soundItem); ok {
			return m, m.startPreview(item.sound)
		}
		return m, nil

	case key.Matches(msg, m.keys.Details):
		if item, ok := m.list.SelectedItem().(soundItem); ok {
			m.selected = &item.sound
			m.mode = ModeDetail
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadSounds

	case key.Matches(msg, m.keys.Back):
		if m.list.FilterState() == list.FilterApplied {
			m.list.ResetFilter()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// buildListItems converts the sound list to list items.
func (m Model) buildListItems() []list.Item {
	items := make([]list.Item, 0, len(m.sounds))
	for i, s := range m.sounds {
		items = append(items, soundItem{sound: s, index: i + 1})
	}
	return items
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.mode {
	case ModeDetail:
		return m.viewDetail()
	case ModeHelp:
		return m.viewHelp()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	return m.list.View() + "\n" + m.viewStatus() + "\n" + m.help.View(m.keys)
}

// viewStatus renders the controller state or the latest status message.
func (m Model) viewStatus() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))

	if m.statusMsg != "" {
		if m.statusErr {
			style = style.Foreground(lipgloss.Color("9"))
		}
		return style.Render(m.statusMsg)
	}

	return style.Render(describeStatus(m.status))
}

// describeStatus renders a controller status as one line.
func describeStatus(st preview.Status) string {
	switch st.State {
	case preview.Playing:
		line := "▶ playing " + st.Source
		if !st.StartedAt.IsZero() {
			line += " (started " + humanize.Time(st.StartedAt) + ")"
		}
		return line
	case preview.Loading:
		return "… loading " + st.Source
	default:
		return "■ idle"
	}
}

func (m Model) viewDetail() string {
	if m.selected == nil {
		return ""
	}
	s := *m.selected

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(s.DisplayName) + "\n\n")
	b.WriteString(labelStyle.Render("ID: ") + s.ID + "\n")
	b.WriteString(labelStyle.Render("Origin: ") + s.Origin() + "\n")
	b.WriteString(labelStyle.Render("Locator: ") + s.SourceLocator + "\n")
	if s.IsDefault() {
		b.WriteString(labelStyle.Render("Default: ") + "yes\n")
	}
	b.WriteString("\n" + m.viewStatus() + "\n\n")
	b.WriteString(labelStyle.Render("enter preview · s stop · esc back"))
	return b.String()
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	full := m.help
	full.ShowAll = true

	return titleStyle.Render("Keyboard Shortcuts") + "\n\n" + full.View(m.keys) + "\n\n" +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("Press ? or esc to return")
}

// Run starts the TUI. states, if non-nil, feeds controller transitions to the status line.
func Run(lister Lister, previewer Previewer, states <-chan preview.Status) error {
	p := tea.NewProgram(New(lister, previewer, states), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package heartrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	heartratedto "pulse/internal/modules/heartrate/dto"
	"pulse/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the slice of the session controller this view drives.
type Port interface {
	Submit(ctx context.Context, rawBPM, rawAt string) heartratedto.SessionState
	Load(ctx context.Context) heartratedto.SessionState
	ClearError() heartratedto.SessionState
}

// ─── messages ────────────────────────────────────────────────────────────────

const (
	OpSubmit     = "save"
	OpLoad       = "load"
	OpClearError = "clear"
)

// StateMsg carries the snapshot an operation settled on.
type StateMsg struct {
	Op    string
	State heartratedto.SessionState
}

// ─── list item ───────────────────────────────────────────────────────────────

type sampleItem struct {
	sample heartratedto.SampleOutput
}

func (i sampleItem) Title() string       { return fmt.Sprintf("Heart Rate: %d bpm", i.sample.BeatsPerMinute) }
func (i sampleItem) Description() string { return "Time: " + i.sample.LocalTime }
func (i sampleItem) FilterValue() string { return i.sample.LocalTime }

// ─── model ───────────────────────────────────────────────────────────────────

type focusField int

const (
	focusRate focusField = iota
	focusTime
	focusHistory
	focusCount
)

// Model is the reading form plus the trailing-day history list.
type Model struct {
	port    Port
	rate    textinput.Model
	at      textinput.Model
	history list.Model
	spinner spinner.Model
	focus   focusField
	busy    bool
	state   heartratedto.SessionState
	width   int
	height  int
}

func New(port Port) Model {
	rate := textinput.New()
	rate.Placeholder = "72"
	rate.CharLimit = 3
	rate.Width = 8
	rate.Focus()

	at := textinput.New()
	at.Placeholder = "yyyy-MM-dd HH:mm"
	at.CharLimit = 16
	at.Width = 20

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Heart Rate History"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, rate: rate, at: at, history: l, spinner: sp}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// Typing reports whether a form field holds focus, in which case global
// key bindings must yield.
func (m Model) Typing() bool {
	return m.focus == focusRate || m.focus == focusTime
}

// SetState replaces the rendered snapshot.
func (m *Model) SetState(state heartratedto.SessionState) tea.Cmd {
	m.state = state
	items := make([]list.Item, len(state.Records))
	for i, s := range state.Records {
		items[i] = sampleItem{sample: s}
	}
	return m.history.SetItems(items)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case StateMsg:
		m.busy = false
		if msg.Op == OpSubmit && !msg.State.HasError() {
			m.rate.SetValue("")
			m.at.SetValue("")
		}
		return m, m.SetState(msg.State)

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			return m, m.setFocus((m.focus + 1) % focusCount)
		case "shift+tab":
			return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
		case "ctrl+r":
			return m, m.Reload()
		case "esc":
			if m.state.HasError() {
				return m, m.Dismiss()
			}
			return m, m.setFocus(focusHistory)
		case "enter":
			if m.Typing() {
				return m, m.Save()
			}
		}
		if m.focus == focusRate && msg.Type == tea.KeyRunes && !digitsOnly(msg.Runes) {
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusRate:
		m.rate, cmd = m.rate.Update(msg)
	case focusTime:
		m.at, cmd = m.at.Update(msg)
	case focusHistory:
		m.history, cmd = m.history.Update(msg)
	}
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Heart Rate") + "\n\n")
	sb.WriteString(theme.Label.Render("Heart Rate (1-300 bpm)") + "\n")
	sb.WriteString(m.rate.View() + "\n")
	sb.WriteString(theme.Label.Render("Date/Time (yyyy-MM-dd HH:mm)") + "\n")
	sb.WriteString(m.at.View() + "\n\n")

	actions := theme.Muted.Render("enter: save  ctrl+r: load  tab: next field  esc: dismiss")
	if m.busy {
		actions = m.spinner.View() + " working…  " + actions
	}
	sb.WriteString(actions + "\n")

	if m.state.HasError() {
		sb.WriteString("\n" + m.renderBanner() + "\n")
	}

	sb.WriteString("\n")
	if len(m.state.Records) == 0 {
		sb.WriteString(theme.Title.Render("Heart Rate History") + "\n")
		sb.WriteString(theme.Muted.Render("No heart rate records found"))
	} else {
		sb.WriteString(m.history.View())
	}
	return sb.String()
}

// Save submits the form contents as typed.
func (m *Model) Save() tea.Cmd {
	return m.SaveRaw(m.rate.Value(), m.at.Value())
}

// SaveRaw submits an explicit reading, bypassing the form.
func (m *Model) SaveRaw(rawBPM, rawAt string) tea.Cmd {
	m.busy = true
	port := m.port
	return tea.Batch(func() tea.Msg {
		return StateMsg{Op: OpSubmit, State: port.Submit(context.Background(), rawBPM, rawAt)}
	}, m.spinner.Tick)
}

func (m *Model) Reload() tea.Cmd {
	m.busy = true
	port := m.port
	return tea.Batch(func() tea.Msg {
		return StateMsg{Op: OpLoad, State: port.Load(context.Background())}
	}, m.spinner.Tick)
}

func (m Model) Dismiss() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		return StateMsg{Op: OpClearError, State: port.ClearError()}
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) setFocus(f focusField) tea.Cmd {
	m.focus = f
	m.rate.Blur()
	m.at.Blur()
	switch f {
	case focusRate:
		return m.rate.Focus()
	case focusTime:
		return m.at.Focus()
	}
	return nil
}

func (m *Model) resize() {
	// form, actions and banner take roughly 12 lines
	h := m.height - 12
	if h < 3 {
		h = 3
	}
	m.history.SetSize(m.width, h)
}

func (m Model) renderBanner() string {
	w := m.width - 4
	if w < 20 {
		w = 60
	}
	body := theme.Hot.Render("Error") + "\n" + m.state.Error + "\n" + theme.Muted.Render("esc: OK")
	return theme.Alert.Width(w).Render(body)
}

func digitsOnly(runes []rune) bool {
	for _, r := range runes {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

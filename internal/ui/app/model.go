package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	heartratedto "pulse/internal/modules/heartrate/dto"
	"pulse/internal/ui/components"
	"pulse/internal/ui/theme"
	heartrateview "pulse/internal/ui/views/heartrate"
	permissionview "pulse/internal/ui/views/permission"
)

// ─── ports ───────────────────────────────────────────────────────────────────

// sessionPort is the heart-rate session controller as the TUI sees it.
type sessionPort interface {
	Snapshot() heartratedto.SessionState
	Submit(ctx context.Context, rawBPM, rawAt string) heartratedto.SessionState
	Load(ctx context.Context) heartratedto.SessionState
	ClearError() heartratedto.SessionState
	CheckPermissions(ctx context.Context) heartratedto.SessionState
	RequestPermissions(ctx context.Context) heartratedto.SessionState
	OpenSettings(ctx context.Context) heartratedto.SessionState
}

// ─── screens ─────────────────────────────────────────────────────────────────

type screenID int

const (
	screenPermission screenID = iota
	screenHeartRate
)

// ─── async messages ───────────────────────────────────────────────────────────

// stateChangedMsg is a snapshot pushed by the session subscription.
type stateChangedMsg struct {
	state heartratedto.SessionState
	ok    bool
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Save    key.Binding
	Load    key.Binding
	Next    key.Binding
	Dismiss key.Binding
	Request key.Binding
	Open    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Save:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save reading")),
		Load:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "load history")),
		Next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss error")),
		Request: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "request access")),
		Open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "health settings")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Save, k.Load, k.Next, k.Dismiss},
		{k.Request, k.Open},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It routes between the permission
// screen and the heart-rate screen based on the session's granted state.
type Model struct {
	session sessionPort
	updates <-chan heartratedto.SessionState

	hrView   heartrateview.Model
	permView permissionview.Model

	screen   screenID
	loaded   bool
	state    heartratedto.SessionState
	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	width    int
	height   int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(session sessionPort, updates <-chan heartratedto.SessionState, grantsPath string) Model {
	return Model{
		session:  session,
		updates:  updates,
		hrView:   heartrateview.New(session),
		permView: permissionview.New(session, grantsPath),
		screen:   screenPermission,
		state:    session.Snapshot(),
		keys:     defaultKeys(),
		help:     help.New(),
		palette:  components.NewPalette(),
		status:   "checking permissions…",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.hrView.Init(),
		m.permView.Init(),
		m.permView.Check(),
		m.waitForState(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case stateChangedMsg:
		if !msg.ok {
			return m, nil
		}
		return m, tea.Batch(m.apply(msg.state), m.waitForState())

	case heartrateview.StateMsg:
		m.status = heartRateStatus(msg)
		var cmd tea.Cmd
		m.hrView, cmd = m.hrView.Update(msg)
		return m, tea.Batch(cmd, m.apply(msg.State))

	case permissionview.StateMsg:
		m.status = permissionStatus(msg)
		var cmd tea.Cmd
		m.permView, cmd = m.permView.Update(msg)
		return m, tea.Batch(cmd, m.apply(msg.State))

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Yield to the form while a field is focused.
		if m.screen == screenHeartRate && m.hrView.Typing() {
			break
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		}
	}

	var screenCmd tea.Cmd
	switch m.screen {
	case screenHeartRate:
		m.hrView, screenCmd = m.hrView.Update(msg)
	case screenPermission:
		m.permView, screenCmd = m.permView.Update(msg)
	}
	cmds = append(cmds, screenCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()

	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.screen == screenHeartRate:
		content = m.hrView.View()
	default:
		content = m.permView.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) renderHeader() string {
	access := theme.Muted.Render("○ no access")
	if m.state.PermissionsGranted {
		access = theme.Good.Render("● read/write")
	}
	bar := theme.Hot.Render("pulse") + "  " + access
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	right := theme.Muted.Render("?:help  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "hr:save":
		if !m.state.PermissionsGranted {
			m.status = "grant access first (perm:request)"
			return m, nil
		}
		if len(parts) == 1 {
			return m, m.hrView.Save()
		}
		if len(parts) != 4 {
			m.status = "usage: hr:save [<bpm> <yyyy-MM-dd> <HH:mm>]"
			return m, nil
		}
		return m, m.hrView.SaveRaw(parts[1], parts[2]+" "+parts[3])

	case "hr:load":
		if !m.state.PermissionsGranted {
			m.status = "grant access first (perm:request)"
			return m, nil
		}
		return m, m.hrView.Reload()

	case "perm:check":
		return m, m.permView.Check()

	case "perm:request":
		return m, m.permView.Request()

	case "perm:settings":
		return m, m.permView.OpenSettings()

	case "error:clear":
		return m, m.hrView.Dismiss()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// apply routes on the latest snapshot. The first switch to the heart-rate
// screen triggers a history load.
func (m *Model) apply(state heartratedto.SessionState) tea.Cmd {
	m.state = state
	m.permView.SetState(state)
	cmd := m.hrView.SetState(state)
	if !state.PermissionsGranted {
		m.screen = screenPermission
		return cmd
	}
	m.screen = screenHeartRate
	if !m.loaded {
		m.loaded = true
		return tea.Batch(cmd, m.hrView.Reload())
	}
	return cmd
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.hrView, _ = m.hrView.Update(sz)
	m.permView, _ = m.permView.Update(sz)
}

func heartRateStatus(msg heartrateview.StateMsg) string {
	if msg.State.HasError() {
		return msg.Op + " failed"
	}
	switch msg.Op {
	case heartrateview.OpSubmit:
		return "reading saved"
	case heartrateview.OpLoad:
		return plural(len(msg.State.Records), "reading") + " in the last 24h"
	}
	return "ready"
}

func permissionStatus(msg permissionview.StateMsg) string {
	switch {
	case msg.State.HasError():
		return msg.Op + " failed"
	case msg.State.PermissionsGranted:
		return "access granted"
	case msg.Op == permissionview.OpSettings:
		return "health settings opened"
	}
	return "access not granted"
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) waitForState() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	updates := m.updates
	return func() tea.Msg {
		state, ok := <-updates
		return stateChangedMsg{state: state, ok: ok}
	}
}

package permission

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	heartratedto "pulse/internal/modules/heartrate/dto"
	"pulse/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	CheckPermissions(ctx context.Context) heartratedto.SessionState
	RequestPermissions(ctx context.Context) heartratedto.SessionState
	OpenSettings(ctx context.Context) heartratedto.SessionState
}

// ─── messages ────────────────────────────────────────────────────────────────

const (
	OpCheck    = "check"
	OpRequest  = "request"
	OpSettings = "settings"
)

type StateMsg struct {
	Op    string
	State heartratedto.SessionState
}

// ─── model ───────────────────────────────────────────────────────────────────

const explainer = `# Health permissions are required

pulse stores heart-rate readings in your local health store and needs two grants:

- **read-heart-rate** to show the last 24 hours of readings
- **write-heart-rate** to save new readings

Grants are kept in %s. Press **r** to request them, or **o** to open that file
and edit them by hand.
`

// Model is shown until read and write access are both granted.
type Model struct {
	port       Port
	grantsPath string
	spinner    spinner.Model
	renderer   *glamour.TermRenderer
	busy       bool
	state      heartratedto.SessionState
	width      int
	height     int
}

func New(port Port, grantsPath string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)
	return Model{port: port, grantsPath: grantsPath, spinner: sp, renderer: r}
}

func (m Model) Init() tea.Cmd { return nil }

func (m *Model) SetState(state heartratedto.SessionState) {
	m.state = state
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if r, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(m.width),
		); err == nil {
			m.renderer = r
		}

	case StateMsg:
		m.busy = false
		m.state = msg.State

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return m, m.Request()
		case "o":
			return m, m.OpenSettings()
		case "c", "ctrl+r":
			return m, m.Check()
		}
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.renderExplainer())
	sb.WriteString("\n")
	if m.busy {
		sb.WriteString(m.spinner.View() + " Waiting for the health store…\n")
	} else {
		sb.WriteString(theme.Muted.Render("r: request access  o: open health settings  c: re-check") + "\n")
	}
	if m.state.HasError() {
		sb.WriteString("\n" + theme.Hot.Render("Error: ") + m.state.Error + "\n")
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, sb.String())
}

func (m *Model) Check() tea.Cmd {
	return m.run(OpCheck, m.port.CheckPermissions)
}

func (m *Model) Request() tea.Cmd {
	return m.run(OpRequest, m.port.RequestPermissions)
}

func (m *Model) OpenSettings() tea.Cmd {
	return m.run(OpSettings, m.port.OpenSettings)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) run(op string, call func(context.Context) heartratedto.SessionState) tea.Cmd {
	m.busy = true
	return tea.Batch(func() tea.Msg {
		return StateMsg{Op: op, State: call(context.Background())}
	}, m.spinner.Tick)
}

func (m Model) renderExplainer() string {
	text := fmt.Sprintf(explainer, "`"+m.grantsPath+"`")
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(text); err == nil {
			return rendered
		}
	}
	return theme.Title.Render("Health permissions are required") + "\n"
}
